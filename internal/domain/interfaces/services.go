package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	domaintypes "veilmarket/internal/domain/types"
)

// IdentityService creates and unlocks the local wallet key.
type IdentityService interface {
	GenerateWallet(passphrase string) (common.Address, error)
	ImportWallet(passphrase string, privateKeyHex string) (common.Address, error)
	UnlockWallet(passphrase string) (domaintypes.WalletKey, error)
}

// BetService places encrypted bets and reveals them to their owner.
type BetService interface {
	PlaceBet(
		ctx context.Context,
		eventID uint64,
		shares uint32,
		isYes bool,
		value *big.Int,
	) (common.Hash, error)
	RevealBet(ctx context.Context, eventID uint64) (domaintypes.BetReveal, error)
}

// RewardService reads reward positions across events.
type RewardService interface {
	RewardsFor(ctx context.Context, eventIDs []uint64) ([]domaintypes.UserReward, error)
}
