package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	domaintypes "veilmarket/internal/domain/types"
)

// Market invokes the prediction market contract. Writes wait for on-chain
// confirmation before returning.
type Market interface {
	Address() common.Address

	CreatePredictionEvent(ctx context.Context, ev domaintypes.NewEvent) (common.Hash, error)
	PlaceBet(
		ctx context.Context,
		eventID uint64,
		input domaintypes.EncryptedInput,
		value *big.Int,
	) (common.Hash, error)
	ResolveEvent(ctx context.Context, eventID uint64, outcome bool) (common.Hash, error)
	ClaimRewards(ctx context.Context, eventID uint64) (common.Hash, error)

	GetEventCount(ctx context.Context) (uint64, error)
	GetPredictionEvent(ctx context.Context, eventID uint64) (domaintypes.PredictionEvent, error)
	GetUserBet(ctx context.Context, eventID uint64, user common.Address) (domaintypes.UserBet, error)
	GetPendingReward(ctx context.Context, eventID uint64, user common.Address) (*big.Int, error)
	HasClaimedReward(ctx context.Context, eventID uint64, user common.Address) (bool, error)
	GetLastError(ctx context.Context, user common.Address) (domaintypes.LastError, error)
}
