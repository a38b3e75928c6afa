package session_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"veilmarket/internal/config"
	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/session"
)

type fakeRelayer struct {
	key     domain.NetworkKey
	calls   atomic.Int32
	entered chan struct{}
	gate    chan struct{}
	fail    atomic.Bool
}

func newFakeRelayer(t *testing.T) *fakeRelayer {
	t.Helper()
	priv, err := crypto.GenerateNetworkKey()
	require.NoError(t, err)
	return &fakeRelayer{
		key: domain.NetworkKey{
			PublicKeyID: "key-1",
			PublicKey:   crypto.RawHex(priv.PublicKey().Bytes()),
			ChainID:     31337,
		},
		entered: make(chan struct{}, 1),
	}
}

func (f *fakeRelayer) FetchNetworkKey(ctx context.Context) (domain.NetworkKey, error) {
	f.calls.Add(1)
	select {
	case f.entered <- struct{}{}:
	default:
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.fail.Load() {
		return domain.NetworkKey{}, domain.ErrRelayerUnavailable
	}
	return f.key, nil
}

func (f *fakeRelayer) RegisterInput(context.Context, domain.InputProofRequest) (domain.InputProofResponse, error) {
	return domain.InputProofResponse{}, nil
}

func (f *fakeRelayer) UserDecrypt(context.Context, domain.UserDecryptRequest) (domain.UserDecryptResponse, error) {
	return domain.UserDecryptResponse{}, nil
}

type fixedChain uint64

func (c fixedChain) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).SetUint64(uint64(c)), nil
}

func localNet() config.Network { return config.Builtin()["localhost"] }

func TestInstance_BeforeInitialize(t *testing.T) {
	s := session.New(localNet(), newFakeRelayer(t), nil, nil)
	_, err := s.Instance()
	require.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestInitialize_ConcurrentCallsShareOneRoundTrip(t *testing.T) {
	rl := newFakeRelayer(t)
	rl.gate = make(chan struct{})
	s := session.New(localNet(), rl, fixedChain(31337), nil)

	const callers = 8
	var wg sync.WaitGroup
	insts := make([]*session.Instance, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			insts[i], errs[i] = s.Initialize(context.Background())
		}(i)
	}
	<-rl.entered
	close(rl.gate)
	wg.Wait()

	require.Equal(t, int32(1), rl.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Same(t, insts[0], insts[i])
	}

	again, err := s.Initialize(context.Background())
	require.NoError(t, err)
	require.Same(t, insts[0], again)
	require.Equal(t, int32(1), rl.calls.Load())

	got, err := s.Instance()
	require.NoError(t, err)
	require.Equal(t, "key-1", got.NetworkKeyID())
}

func TestInitialize_FailureIsNotCached(t *testing.T) {
	rl := newFakeRelayer(t)
	rl.fail.Store(true)
	s := session.New(localNet(), rl, nil, nil)

	_, err := s.Initialize(context.Background())
	require.ErrorIs(t, err, domain.ErrInitializationFailed)
	require.ErrorIs(t, err, domain.ErrRelayerUnavailable)
	_, err = s.Instance()
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	rl.fail.Store(false)
	inst, err := s.Initialize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, inst)
	require.Equal(t, int32(2), rl.calls.Load())
}

func TestInitialize_WrongChain(t *testing.T) {
	s := session.New(localNet(), newFakeRelayer(t), fixedChain(1), nil)
	_, err := s.Initialize(context.Background())
	require.ErrorIs(t, err, domain.ErrInitializationFailed)
	require.Contains(t, err.Error(), "chain 1")
}

func TestInitialize_CancelledCallerStopsWaiting(t *testing.T) {
	rl := newFakeRelayer(t)
	rl.gate = make(chan struct{})
	s := session.New(localNet(), rl, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Initialize(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	close(rl.gate)
	inst, err := s.Initialize(context.Background())
	require.NoError(t, err)
	require.NotNil(t, inst)
}

func TestInstance_CreateEncryptedInput(t *testing.T) {
	s := session.New(localNet(), newFakeRelayer(t), nil, nil)
	inst, err := s.Initialize(context.Background())
	require.NoError(t, err)

	_, err = inst.CreateEncryptedInput(common.Address{1}, common.Address{})
	require.ErrorIs(t, err, domain.ErrWalletNotConnected)

	b, err := inst.CreateEncryptedInput(common.Address{1}, common.Address{2})
	require.NoError(t, err)
	require.NoError(t, b.AddUint32(7))
}
