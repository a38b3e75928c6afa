package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"filippo.io/hpke"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"veilmarket/internal/config"
	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/input"
)

// InitTimeout bounds one shared initialization attempt.
const InitTimeout = 30 * time.Second

type Session struct {
	net     config.Network
	relayer domain.RelayerClient
	chain   domain.ChainProvider
	log     *logrus.Entry

	group singleflight.Group

	mu   sync.RWMutex
	inst *Instance
}

// New returns an uninitialized session. chain may be nil when no provider
// is connected; the chain check is then skipped.
func New(net config.Network, relayer domain.RelayerClient, chain domain.ChainProvider, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		net:     net,
		relayer: relayer,
		chain:   chain,
		log:     log.WithField("component", "session"),
	}
}

// Initialize returns the instance, creating it on first use. A caller whose
// ctx ends stops waiting; the shared attempt keeps going for the others.
func (s *Session) Initialize(ctx context.Context) (*Instance, error) {
	if inst := s.current(); inst != nil {
		return inst, nil
	}
	ch := s.group.DoChan("init", func() (any, error) {
		if inst := s.current(); inst != nil {
			return inst, nil
		}
		initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), InitTimeout)
		defer cancel()

		inst, err := s.initialize(initCtx)
		if err != nil {
			s.log.WithError(err).Warn("initialization failed")
			return nil, fmt.Errorf("%w: %w", domain.ErrInitializationFailed, err)
		}
		s.mu.Lock()
		s.inst = inst
		s.mu.Unlock()
		s.log.WithField("key_id", inst.key.PublicKeyID).Info("confidential client ready")
		return inst, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Instance), nil
	}
}

// Instance returns the initialized instance or domain.ErrNotInitialized.
func (s *Session) Instance() (*Instance, error) {
	if inst := s.current(); inst != nil {
		return inst, nil
	}
	return nil, domain.ErrNotInitialized
}

func (s *Session) current() *Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inst
}

func (s *Session) initialize(ctx context.Context) (*Instance, error) {
	s.log.Debug("initializing")
	if s.chain != nil {
		id, err := s.chain.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("query chain id: %w", err)
		}
		if !id.IsUint64() || id.Uint64() != s.net.ChainID {
			return nil, fmt.Errorf("provider is on chain %s, want %d (%s)", id, s.net.ChainID, s.net.Name)
		}
	}
	key, err := s.relayer.FetchNetworkKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch network key: %w", err)
	}
	if key.ChainID != 0 && key.ChainID != s.net.ChainID {
		return nil, fmt.Errorf("%w: relayer serves chain %d, want %d", domain.ErrProtocolViolation, key.ChainID, s.net.ChainID)
	}
	pub, err := crypto.ParseNetworkKey(key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProtocolViolation, err)
	}
	return &Instance{net: s.net, key: key, pub: pub, relayer: s.relayer}, nil
}

// Instance is the initialized client context. It is immutable.
type Instance struct {
	net     config.Network
	key     domain.NetworkKey
	pub     hpke.PublicKey
	relayer domain.RelayerClient
}

// Network returns the network the instance was initialized for.
func (i *Instance) Network() config.Network { return i.net }

func (i *Instance) ChainID() uint64 { return i.net.ChainID }

func (i *Instance) GatewayChainID() uint64 { return i.net.GatewayChainID }

func (i *Instance) DecryptionVerifier() common.Address { return i.net.DecryptionVerifierAddress() }

func (i *Instance) NetworkPublicKey() hpke.PublicKey { return i.pub }

// NetworkKeyID identifies the network key inputs are sealed to.
func (i *Instance) NetworkKeyID() string { return i.key.PublicKeyID }

func (i *Instance) RegisterInput(ctx context.Context, req domain.InputProofRequest) (domain.InputProofResponse, error) {
	return i.relayer.RegisterInput(ctx, req)
}

func (i *Instance) UserDecrypt(ctx context.Context, req domain.UserDecryptRequest) (domain.UserDecryptResponse, error) {
	return i.relayer.UserDecrypt(ctx, req)
}

// CreateEncryptedInput returns a builder bound to (contract, user).
func (i *Instance) CreateEncryptedInput(contract, user common.Address) (*input.Builder, error) {
	return input.New(i, contract, user)
}
