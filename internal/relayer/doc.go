// Package relayer provides an HTTP implementation of the
// domain.RelayerClient interface used by veilmarket.
//
// The relayer fronts the confidential-computing backend. It serves the
// network public key that inputs are sealed to, registers sealed input
// batches in exchange for handles and a proof, and re-encrypts handles to a
// caller-supplied public key once the caller has signed a decryption
// authorization.
//
// All requests are JSON over HTTP, accept a context for cancellation and
// deadlines, and carry an X-Request-ID header. Transport failures and 5xx
// statuses map to domain.ErrRelayerUnavailable; 4xx statuses map to
// domain.ErrDecryptionDenied and keep the relayer's message.
package relayer
