package market_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"veilmarket/internal/domain"
	"veilmarket/internal/market"
	"veilmarket/internal/market/marketsim"
	"veilmarket/internal/protocol/input"
	"veilmarket/internal/relayer/devrelayer"
	"veilmarket/internal/wallet"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	gwei         = big.NewInt(1_000_000_000)
	now          = time.Unix(1_700_000_000, 0)
)

type fixture struct {
	chain  *marketsim.Chain
	ledger *devrelayer.Server
	wallet *wallet.Local
	market *market.Market
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ledger, err := devrelayer.New(devrelayer.Config{ChainID: 31337, GatewayChainID: 55815})
	require.NoError(t, err)
	chain := marketsim.New(contractAddr, 31337, ledger, func() time.Time { return now })
	chain.PendingPolls = 2
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	w := wallet.NewLocal(key)
	m := market.New(chain, w, contractAddr, market.WithReceiptPolling(time.Millisecond, 5*time.Second))
	return &fixture{chain: chain, ledger: ledger, wallet: w, market: m}
}

func (f *fixture) createEvent(t *testing.T) uint64 {
	t.Helper()
	ctx := context.Background()
	_, err := f.market.CreatePredictionEvent(ctx, domain.NewEvent{
		Description: "Will it rain tomorrow?",
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		PriceYes:    new(big.Int).Mul(big.NewInt(1_000_000), gwei),
		PriceNo:     new(big.Int).Mul(big.NewInt(1_000_000), gwei),
	})
	require.NoError(t, err)
	n, err := f.market.GetEventCount(ctx)
	require.NoError(t, err)
	return n - 1
}

func (f *fixture) betInput(t *testing.T, shares uint64, yes bool) domain.EncryptedInput {
	t.Helper()
	dir := uint64(0)
	if yes {
		dir = 1
	}
	in, err := f.ledger.Issue(contractAddr, f.wallet.Address(),
		input.Slot{Type: domain.FheUint32, Value: shares},
		input.Slot{Type: domain.FheBool, Value: dir},
	)
	require.NoError(t, err)
	return in
}

func TestCreateAndReadEvent(t *testing.T) {
	f := newFixture(t)
	id := f.createEvent(t)
	require.Equal(t, uint64(0), id)

	ev, err := f.market.GetPredictionEvent(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Will it rain tomorrow?", ev.Description)
	require.Equal(t, domain.EventActive, ev.Status(now))
	require.Zero(t, ev.TotalPoolWei.Sign())
}

func TestPlaceBet_StoresHandles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createEvent(t)

	pairs, err := f.market.UserBetHandles(ctx, id, f.wallet.Address())
	require.NoError(t, err)
	require.Empty(t, pairs)

	in := f.betInput(t, 7, true)
	value := new(big.Int).Mul(big.NewInt(7_000_000), gwei)
	_, err = f.market.PlaceBet(ctx, id, in, value)
	require.NoError(t, err)

	bet, err := f.market.GetUserBet(ctx, id, f.wallet.Address())
	require.NoError(t, err)
	require.True(t, bet.HasPlacedBet)
	require.Equal(t, in.Handles[0], bet.EncryptedShares)
	require.Equal(t, in.Handles[1], bet.IsYesBet)
	amount, ok := f.ledger.Lookup(bet.EncryptedAmount)
	require.True(t, ok)
	require.Equal(t, value.Uint64(), amount.Raw)

	pairs, err = f.market.UserBetHandles(ctx, id, f.wallet.Address())
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for _, p := range pairs {
		require.Equal(t, contractAddr, p.ContractAddress)
	}

	ev, err := f.market.GetPredictionEvent(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 0, ev.TotalPoolWei.Cmp(value))
}

func TestPlaceBet_NeedsTwoHandles(t *testing.T) {
	f := newFixture(t)
	in := f.betInput(t, 1, false)
	in.Handles = in.Handles[:1]
	_, err := f.market.PlaceBet(context.Background(), 0, in, big.NewInt(1))
	require.Error(t, err)
	require.Equal(t, 0, f.chain.Sent())
}

func TestPlaceBet_ForgedProofReverts(t *testing.T) {
	f := newFixture(t)
	id := f.createEvent(t)
	in := f.betInput(t, 1, true)
	in.InputProof[len(in.InputProof)-2] ^= 0xff

	_, err := f.market.PlaceBet(context.Background(), id, in, big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrTxReverted)
}

func TestResolve_InvalidatesCacheAndRevertsTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createEvent(t)

	ev, err := f.market.GetPredictionEvent(ctx, id)
	require.NoError(t, err)
	require.False(t, ev.IsResolved)

	_, err = f.market.ResolveEvent(ctx, id, true)
	require.NoError(t, err)
	ev, err = f.market.GetPredictionEvent(ctx, id)
	require.NoError(t, err)
	require.True(t, ev.IsResolved)
	require.True(t, ev.Outcome)

	_, err = f.market.ResolveEvent(ctx, id, false)
	require.ErrorIs(t, err, domain.ErrTxReverted)
}

func TestRewards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.createEvent(t)
	value := new(big.Int).Mul(big.NewInt(2_000_000), gwei)
	_, err := f.market.PlaceBet(ctx, id, f.betInput(t, 2, true), value)
	require.NoError(t, err)
	_, err = f.market.ResolveEvent(ctx, id, true)
	require.NoError(t, err)

	pending, err := f.market.GetPendingReward(ctx, id, f.wallet.Address())
	require.NoError(t, err)
	require.Equal(t, 0, pending.Cmp(value))

	_, err = f.market.ClaimRewards(ctx, id)
	require.NoError(t, err)
	claimed, err := f.market.HasClaimedReward(ctx, id, f.wallet.Address())
	require.NoError(t, err)
	require.True(t, claimed)

	le, err := f.market.GetLastError(ctx, f.wallet.Address())
	require.NoError(t, err)
	code, ok := f.ledger.Lookup(le.Code)
	require.True(t, ok)
	require.Equal(t, marketsim.CodeNone, code.Raw)
	require.Equal(t, now.Unix(), le.Timestamp.Unix())
}

func TestReadOnlyMarketCannotWrite(t *testing.T) {
	f := newFixture(t)
	ro := market.New(f.chain, nil, contractAddr)
	_, err := ro.ClaimRewards(context.Background(), 0)
	require.ErrorIs(t, err, domain.ErrWalletNotConnected)
}

func TestRejectedTransaction(t *testing.T) {
	f := newFixture(t)
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	w := wallet.NewLocal(key, wallet.WithApprover(func(context.Context, wallet.Request) (bool, error) { return false, nil }))
	m := market.New(f.chain, w, contractAddr)
	_, err = m.ResolveEvent(context.Background(), 0, true)
	require.ErrorIs(t, err, wallet.ErrRejected)
	require.Equal(t, 0, f.chain.Sent())
}
