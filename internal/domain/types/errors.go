package types

import "errors"

// Failure taxonomy of the confidential client. Callers match with errors.Is;
// wrapped errors carry the underlying cause.
var (
	// ErrNotInitialized is returned when the session instance is requested
	// before any initialization has succeeded.
	ErrNotInitialized = errors.New("confidential client not initialized")

	// ErrInitializationFailed wraps any failure while initializing the
	// session. It is not cached; calling Initialize again retries.
	ErrInitializationFailed = errors.New("confidential client initialization failed")

	// ErrBuilderFinalized is returned when an input builder is used after
	// Encrypt has been called on it.
	ErrBuilderFinalized = errors.New("encrypted input already finalized")

	// ErrValueOutOfRange is returned when a plaintext does not fit the
	// declared width of its slot.
	ErrValueOutOfRange = errors.New("value out of range for encrypted type")

	// ErrTooManyInputs is returned when a builder exceeds the batch limit.
	ErrTooManyInputs = errors.New("too many values in encrypted input")

	// ErrUserRejectedSignature is returned when the wallet declines to sign
	// the decryption authorization.
	ErrUserRejectedSignature = errors.New("user rejected signature request")

	// ErrSignerRejected is returned by a Signer whose user declined the
	// request. Signer implementations wrap it.
	ErrSignerRejected = errors.New("signer: user rejected the request")

	// ErrRelayerUnavailable is returned on transport failures or 5xx
	// responses from the relayer.
	ErrRelayerUnavailable = errors.New("relayer unavailable")

	// ErrDecryptionDenied is returned when the relayer refuses a request
	// (bad signature, expired authorization, missing permission).
	ErrDecryptionDenied = errors.New("relayer denied request")

	// ErrIncompleteDecryption is returned when the relayer response does not
	// cover every requested handle.
	ErrIncompleteDecryption = errors.New("relayer response missing requested handles")

	// ErrProtocolViolation is returned when a relayer response is
	// structurally valid JSON but breaks the protocol contract.
	ErrProtocolViolation = errors.New("relayer protocol violation")

	// ErrWalletNotConnected is returned when an operation needs an account
	// and none is available.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrTxReverted is returned when a submitted transaction is mined with
	// a failed status.
	ErrTxReverted = errors.New("transaction reverted")

	// ErrInvalidHandle is returned when a value cannot be normalized into a
	// ciphertext handle.
	ErrInvalidHandle = errors.New("invalid ciphertext handle")

	// ErrTypeMismatch is returned when a clear value is read as a type it
	// was not decrypted as.
	ErrTypeMismatch = errors.New("clear value type mismatch")
)
