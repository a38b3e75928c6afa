package market

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/pmylund/go-cache"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/domain"
)

const (
	// EventCacheTTL is how long an event record is served from cache.
	EventCacheTTL = 5 * time.Second

	gasHeadroomPercent = 20
)

// Backend is the part of an Ethereum client the market needs.
// *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

type options struct {
	log          *logrus.Entry
	receiptPoll  time.Duration
	receiptLimit time.Duration
}

// Option configures a Market.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option { return func(o *options) { o.log = log } }

// WithReceiptPolling sets the first receipt poll interval and how long to
// wait for a receipt overall.
func WithReceiptPolling(initial, limit time.Duration) Option {
	return func(o *options) {
		o.receiptPoll = initial
		o.receiptLimit = limit
	}
}

type Market struct {
	backend  Backend
	signer   domain.Signer
	contract common.Address
	events   *cache.Cache
	opts     options
	log      *logrus.Entry
}

// New returns a market client for contract. signer may be nil for a
// read-only client; writes then fail with domain.ErrWalletNotConnected.
func New(backend Backend, signer domain.Signer, contract common.Address, opts ...Option) *Market {
	o := options{
		log:          logrus.NewEntry(logrus.StandardLogger()),
		receiptPoll:  500 * time.Millisecond,
		receiptLimit: 3 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Market{
		backend:  backend,
		signer:   signer,
		contract: contract,
		events:   cache.New(EventCacheTTL, 30*time.Second),
		opts:     o,
		log:      o.log.WithFields(logrus.Fields{"component": "market", "contract": contract.Hex()}),
	}
}

// Address returns the contract address.
func (m *Market) Address() common.Address { return m.contract }

// CreatePredictionEvent creates a new event.
func (m *Market) CreatePredictionEvent(ctx context.Context, ev domain.NewEvent) (common.Hash, error) {
	return m.transact(ctx, nil, "createPredictionEvent",
		ev.Description,
		big.NewInt(ev.StartTime.Unix()),
		big.NewInt(ev.EndTime.Unix()),
		nonNil(ev.PriceYes),
		nonNil(ev.PriceNo),
	)
}

// PlaceBet submits an encrypted bet. in must hold exactly the shares and
// direction handles, in that order, with their proof.
func (m *Market) PlaceBet(ctx context.Context, eventID uint64, in domain.EncryptedInput, value *big.Int) (common.Hash, error) {
	if len(in.Handles) != 2 {
		return common.Hash{}, errors.Errorf("placeBet needs 2 handles, got %d", len(in.Handles))
	}
	if len(in.InputProof) == 0 {
		return common.Hash{}, errors.New("placeBet needs an input proof")
	}
	defer m.forget(eventID)
	return m.transact(ctx, value, "placeBet",
		new(big.Int).SetUint64(eventID),
		[32]byte(in.Handles[0]),
		[32]byte(in.Handles[1]),
		[]byte(in.InputProof),
	)
}

// ResolveEvent records the outcome of an event.
func (m *Market) ResolveEvent(ctx context.Context, eventID uint64, outcome bool) (common.Hash, error) {
	defer m.forget(eventID)
	return m.transact(ctx, nil, "resolveEvent", new(big.Int).SetUint64(eventID), outcome)
}

// ClaimRewards claims the caller's winnings on an event.
func (m *Market) ClaimRewards(ctx context.Context, eventID uint64) (common.Hash, error) {
	defer m.forget(eventID)
	return m.transact(ctx, nil, "claimRewards", new(big.Int).SetUint64(eventID))
}

// GetEventCount returns the number of events created so far.
func (m *Market) GetEventCount(ctx context.Context) (uint64, error) {
	out, err := m.call(ctx, "getEventCount")
	if err != nil {
		return 0, err
	}
	n, ok := out[0].(*big.Int)
	if !ok || !n.IsUint64() {
		return 0, errors.Errorf("getEventCount: unexpected result %v", out[0])
	}
	return n.Uint64(), nil
}

// GetPredictionEvent returns the public record of an event.
func (m *Market) GetPredictionEvent(ctx context.Context, eventID uint64) (domain.PredictionEvent, error) {
	key := cacheKey(eventID)
	if v, ok := m.events.Get(key); ok {
		return v.(domain.PredictionEvent), nil
	}
	out, err := m.call(ctx, "getPredictionEvent", new(big.Int).SetUint64(eventID))
	if err != nil {
		return domain.PredictionEvent{}, err
	}
	if len(out) != 11 {
		return domain.PredictionEvent{}, errors.Errorf("getPredictionEvent: %d outputs", len(out))
	}
	ev := domain.PredictionEvent{
		ID:             out[0].(*big.Int).Uint64(),
		Description:    out[1].(string),
		StartTime:      time.Unix(out[2].(*big.Int).Int64(), 0),
		EndTime:        time.Unix(out[3].(*big.Int).Int64(), 0),
		PriceYes:       out[4].(*big.Int),
		PriceNo:        out[5].(*big.Int),
		IsResolved:     out[6].(bool),
		Outcome:        out[7].(bool),
		TotalYesShares: out[8].(*big.Int),
		TotalNoShares:  out[9].(*big.Int),
		TotalPoolWei:   out[10].(*big.Int),
	}
	m.events.Set(key, ev, cache.DefaultExpiration)
	return ev, nil
}

// GetUserBet returns the handles stored for user on an event.
func (m *Market) GetUserBet(ctx context.Context, eventID uint64, user common.Address) (domain.UserBet, error) {
	out, err := m.call(ctx, "getUserBet", new(big.Int).SetUint64(eventID), user)
	if err != nil {
		return domain.UserBet{}, err
	}
	if len(out) != 4 {
		return domain.UserBet{}, errors.Errorf("getUserBet: %d outputs", len(out))
	}
	return domain.UserBet{
		EventID:         eventID,
		User:            user,
		EncryptedAmount: domain.Handle(out[0].([32]byte)),
		EncryptedShares: domain.Handle(out[1].([32]byte)),
		IsYesBet:        domain.Handle(out[2].([32]byte)),
		HasPlacedBet:    out[3].(bool),
	}, nil
}

// UserBetHandles returns the amount, shares and direction handles of
// user's bet paired with this contract, ready for decryption. A user without
// a bet yields no pairs.
func (m *Market) UserBetHandles(ctx context.Context, eventID uint64, user common.Address) ([]domain.HandleContractPair, error) {
	bet, err := m.GetUserBet(ctx, eventID, user)
	if err != nil {
		return nil, err
	}
	if !bet.HasPlacedBet {
		return nil, nil
	}
	return []domain.HandleContractPair{
		{Handle: bet.EncryptedAmount, ContractAddress: m.contract},
		{Handle: bet.EncryptedShares, ContractAddress: m.contract},
		{Handle: bet.IsYesBet, ContractAddress: m.contract},
	}, nil
}

// GetPendingReward returns the unclaimed reward of user on an event.
func (m *Market) GetPendingReward(ctx context.Context, eventID uint64, user common.Address) (*big.Int, error) {
	out, err := m.call(ctx, "getPendingReward", new(big.Int).SetUint64(eventID), user)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// HasClaimedReward reports whether user already claimed on an event.
func (m *Market) HasClaimedReward(ctx context.Context, eventID uint64, user common.Address) (bool, error) {
	out, err := m.call(ctx, "hasClaimedReward", new(big.Int).SetUint64(eventID), user)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

// GetLastError returns the encrypted error code of user's last action.
func (m *Market) GetLastError(ctx context.Context, user common.Address) (domain.LastError, error) {
	out, err := m.call(ctx, "getLastError", user)
	if err != nil {
		return domain.LastError{}, err
	}
	if len(out) != 2 {
		return domain.LastError{}, errors.Errorf("getLastError: %d outputs", len(out))
	}
	return domain.LastError{
		Code:      domain.Handle(out[0].([32]byte)),
		Timestamp: time.Unix(out[1].(*big.Int).Int64(), 0),
	}, nil
}

func (m *Market) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	msg := ethereum.CallMsg{To: &m.contract, Data: data}
	if m.signer != nil {
		msg.From = m.signer.Address()
	}
	raw, err := m.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	out, err := parsedABI.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	return out, nil
}

func (m *Market) transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (common.Hash, error) {
	if m.signer == nil || m.signer.Address() == (common.Address{}) {
		return common.Hash{}, domain.ErrWalletNotConnected
	}
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "pack %s", method)
	}
	value = nonNil(value)
	from := m.signer.Address()

	chainID, err := m.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "chain id")
	}
	nonce, err := m.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "pending nonce")
	}
	gasPrice, err := m.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "gas price")
	}
	gas, err := m.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &m.contract, Value: value, Data: data})
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "estimate gas for %s", method)
	}
	gas += gas * gasHeadroomPercent / 100

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &m.contract,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := m.signer.SignTx(ctx, tx, chainID)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "sign %s", method)
	}
	if err := m.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, errors.Wrapf(err, "send %s", method)
	}
	hash := signed.Hash()
	log := m.log.WithFields(logrus.Fields{"method": method, "tx": hash.Hex()})
	log.Debug("transaction sent")

	receipt, err := m.waitMined(ctx, hash)
	if err != nil {
		return hash, err
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		log.Warn("transaction reverted")
		return hash, fmt.Errorf("%w: %s %s", domain.ErrTxReverted, method, hash.Hex())
	}
	log.WithField("block", receipt.BlockNumber).Debug("transaction mined")
	return hash, nil
}

func (m *Market) waitMined(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.opts.receiptPoll
	b.MaxInterval = 10 * m.opts.receiptPoll
	b.MaxElapsedTime = m.opts.receiptLimit

	var receipt *ethtypes.Receipt
	poll := func() error {
		r, err := m.backend.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}
	err := backoff.RetryNotify(poll, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		m.log.WithField("tx", hash.Hex()).Debugf("receipt not ready, retrying in %v", d)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrapf(err, "wait for %s", hash.Hex())
	}
	return receipt, nil
}

func (m *Market) forget(eventID uint64) { m.events.Delete(cacheKey(eventID)) }

func cacheKey(eventID uint64) string { return strconv.FormatUint(eventID, 10) }

func nonNil(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

var _ domain.Market = (*Market)(nil)
