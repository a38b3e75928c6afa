// Package wallet provides the account signing capability used by the
// client: structured-data signatures for decryption authorizations and
// transaction signatures for contract writes.
//
// The local implementation keeps a secp256k1 key in memory and asks an
// Approver before every signature. An approver that declines makes the call
// fail with ErrRejected, the same way a browser wallet reports a user
// rejection.
package wallet
