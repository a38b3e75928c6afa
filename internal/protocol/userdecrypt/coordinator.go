package userdecrypt

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/domain"
)

// DefaultValidityDays is how long a signed authorization stays valid.
const DefaultValidityDays = 10

// Provider returns the backend for a flow, typically the initialized
// session instance.
type Provider func() (Backend, error)

type options struct {
	validityDays int
	now          func() time.Time
	log          *logrus.Entry
}

func defaultOptions() options {
	return options{
		validityDays: DefaultValidityDays,
		now:          time.Now,
		log:          logrus.NewEntry(logrus.StandardLogger()),
	}
}

// Option configures a Coordinator or Flow.
type Option func(*options)

// WithClock overrides the time source for the validity window.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithValidityDays overrides the authorization validity.
func WithValidityDays(days int) Option { return func(o *options) { o.validityDays = days } }

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option { return func(o *options) { o.log = log } }

type Coordinator struct {
	source Provider
	signer domain.Signer
	opts   []Option
	log    *logrus.Entry
}

// New returns a coordinator. signer may be nil when no wallet is connected;
// every decryption then fails with domain.ErrWalletNotConnected.
func New(source Provider, signer domain.Signer, opts ...Option) *Coordinator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.WithField("component", "userdecrypt")
	return &Coordinator{
		source: source,
		signer: signer,
		opts:   append(append([]Option(nil), opts...), WithLogger(log)),
		log:    log,
	}
}

// DecryptMany decrypts handles held by contract with a single signature and
// a single relayer round trip. Duplicates are requested once. An empty
// batch returns an empty result without any I/O.
func (c *Coordinator) DecryptMany(ctx context.Context, handles []domain.Handle, contract common.Address) (domain.DecryptionResult, error) {
	if c.signer == nil || c.signer.Address() == (common.Address{}) {
		return nil, domain.ErrWalletNotConnected
	}
	if len(handles) == 0 {
		return domain.DecryptionResult{}, nil
	}
	seen := make(map[domain.Handle]bool, len(handles))
	pairs := make([]domain.HandleContractPair, 0, len(handles))
	for _, h := range handles {
		if h.IsZero() || !h.Type().Valid() {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidHandle, h)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		pairs = append(pairs, domain.HandleContractPair{Handle: h, ContractAddress: contract})
	}
	backend, err := c.source()
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"handles": len(pairs), "contract": contract.Hex()}).Debug("decrypt")
	return NewFlow(backend, c.signer, pairs, c.opts...).Run(ctx)
}

func (c *Coordinator) decryptOne(ctx context.Context, h domain.Handle, contract common.Address) (domain.ClearValue, error) {
	res, err := c.DecryptMany(ctx, []domain.Handle{h}, contract)
	if err != nil {
		return domain.ClearValue{}, err
	}
	return res[h], nil
}

func (c *Coordinator) DecryptBool(ctx context.Context, h domain.Handle, contract common.Address) (bool, error) {
	v, err := c.decryptOne(ctx, h, contract)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

func (c *Coordinator) DecryptUint8(ctx context.Context, h domain.Handle, contract common.Address) (uint8, error) {
	v, err := c.decryptOne(ctx, h, contract)
	if err != nil {
		return 0, err
	}
	return v.Uint8()
}

func (c *Coordinator) DecryptUint32(ctx context.Context, h domain.Handle, contract common.Address) (uint32, error) {
	v, err := c.decryptOne(ctx, h, contract)
	if err != nil {
		return 0, err
	}
	return v.Uint32()
}

func (c *Coordinator) DecryptUint64(ctx context.Context, h domain.Handle, contract common.Address) (uint64, error) {
	v, err := c.decryptOne(ctx, h, contract)
	if err != nil {
		return 0, err
	}
	return v.Uint64()
}
