// Package userdecrypt implements the authenticated user-decryption flow.
//
// A Flow takes a batch of handles held by one contract through five steps:
//
//	Pending -> KeypairGenerated -> MessageComposed -> Signed -> Submitted -> Resolved
//
// It generates an ephemeral X25519 keypair, composes the typed-data
// authorization over its public key, has the wallet sign it, submits the
// signed request to the relayer, and opens the re-encrypted values with the
// ephemeral private key. Any failing step moves the flow to Failed. A flow
// is single use: once Resolved or Failed every step returns ErrFlowSpent,
// and steps never run out of order.
//
// The Coordinator runs one fresh Flow per call and exposes the typed
// helpers used by the rest of the client.
package userdecrypt
