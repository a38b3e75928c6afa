// Package market invokes the confidential prediction market contract.
//
// Writes are legacy transactions built here, signed by the wallet and
// submitted through the chain backend; they return once the transaction is
// mined, polling for the receipt with exponential backoff. A mined
// transaction with a failed status is reported as domain.ErrTxReverted.
//
// Handles and proofs are passed through to the contract unmodified. Event
// records are cached for a short time and dropped whenever this client
// writes to the event.
package market
