package interfaces

import (
	"context"

	domaintypes "veilmarket/internal/domain/types"
)

// RelayerClient is how we talk to the confidential-computing relayer, all
// with context.
type RelayerClient interface {
	FetchNetworkKey(ctx context.Context) (domaintypes.NetworkKey, error)
	RegisterInput(
		ctx context.Context,
		req domaintypes.InputProofRequest,
	) (domaintypes.InputProofResponse, error)
	UserDecrypt(
		ctx context.Context,
		req domaintypes.UserDecryptRequest,
	) (domaintypes.UserDecryptResponse, error)
}
