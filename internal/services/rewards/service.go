package rewards

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"veilmarket/internal/domain"
)

// readConcurrency bounds the number of events queried at once.
const readConcurrency = 8

// ErrNothingToClaim is returned when there is no unclaimed reward on the
// event.
var ErrNothingToClaim = errors.New("no winnings available to claim")

// Market is the subset of the contract the service uses.
type Market interface {
	GetPendingReward(ctx context.Context, eventID uint64, user common.Address) (*big.Int, error)
	HasClaimedReward(ctx context.Context, eventID uint64, user common.Address) (bool, error)
	ClaimRewards(ctx context.Context, eventID uint64) (common.Hash, error)
}

// Service reports and claims rewards for the connected account.
type Service struct {
	market Market
	signer domain.Signer
}

// New returns a reward service.
func New(market Market, signer domain.Signer) *Service {
	return &Service{market: market, signer: signer}
}

// RewardsFor returns the pending amount and claimed flag for each event,
// in the order given. The first failing read cancels the rest.
func (s *Service) RewardsFor(ctx context.Context, eventIDs []uint64) ([]domain.UserReward, error) {
	user, err := s.account()
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserReward, len(eventIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, id := range eventIDs {
		g.Go(func() error {
			pending, err := s.market.GetPendingReward(gctx, id, user)
			if err != nil {
				return err
			}
			claimed, err := s.market.HasClaimedReward(gctx, id, user)
			if err != nil {
				return err
			}
			out[i] = domain.UserReward{EventID: id, PendingAmount: pending, Claimed: claimed}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Claimable filters RewardsFor down to unclaimed, non-zero rewards.
func (s *Service) Claimable(ctx context.Context, eventIDs []uint64) ([]domain.UserReward, error) {
	all, err := s.RewardsFor(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	var out []domain.UserReward
	for _, r := range all {
		if !r.Claimed && r.PendingAmount != nil && r.PendingAmount.Sign() > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// Claim withdraws the reward on eventID after checking one is pending.
func (s *Service) Claim(ctx context.Context, eventID uint64) (common.Hash, error) {
	rs, err := s.Claimable(ctx, []uint64{eventID})
	if err != nil {
		return common.Hash{}, err
	}
	if len(rs) == 0 {
		return common.Hash{}, ErrNothingToClaim
	}
	return s.market.ClaimRewards(ctx, eventID)
}

func (s *Service) account() (common.Address, error) {
	if s.signer == nil || s.signer.Address() == (common.Address{}) {
		return common.Address{}, domain.ErrWalletNotConnected
	}
	return s.signer.Address(), nil
}

// Compile-time assertion that Service implements domain.RewardService.
var _ domain.RewardService = (*Service)(nil)
