package domain

import types "veilmarket/internal/domain/types"

// Error taxonomy, re-exported so callers only import domain.
var (
	ErrNotInitialized        = types.ErrNotInitialized
	ErrInitializationFailed  = types.ErrInitializationFailed
	ErrBuilderFinalized      = types.ErrBuilderFinalized
	ErrValueOutOfRange       = types.ErrValueOutOfRange
	ErrTooManyInputs         = types.ErrTooManyInputs
	ErrUserRejectedSignature = types.ErrUserRejectedSignature
	ErrSignerRejected        = types.ErrSignerRejected
	ErrRelayerUnavailable    = types.ErrRelayerUnavailable
	ErrDecryptionDenied      = types.ErrDecryptionDenied
	ErrIncompleteDecryption  = types.ErrIncompleteDecryption
	ErrProtocolViolation     = types.ErrProtocolViolation
	ErrWalletNotConnected    = types.ErrWalletNotConnected
	ErrTxReverted            = types.ErrTxReverted
	ErrInvalidHandle         = types.ErrInvalidHandle
	ErrTypeMismatch          = types.ErrTypeMismatch
)
