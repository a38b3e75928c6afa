package marketsim

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"veilmarket/internal/domain"
	"veilmarket/internal/market"
)

// Contract error codes recorded in the encrypted last-error slot.
const (
	CodeNone uint64 = iota
	CodeNotActive
	CodeInsufficientPayment
	CodeAlreadyBet
	CodeNotResolved
	CodeNothingToClaim
)

var errRevert = errors.New("execution reverted")

// Ledger holds the clear values behind handles.
type Ledger interface {
	Register(t domain.FheType, v uint64, contract, user common.Address) (domain.Handle, error)
	Lookup(h domain.Handle) (domain.ClearValue, bool)
	VerifyProof(handles []domain.Handle, proof []byte, contract, user common.Address) error
}

type event struct {
	description    string
	start, end     int64
	priceYes       *big.Int
	priceNo        *big.Int
	resolved       bool
	outcome        bool
	totalYesShares *big.Int
	totalNoShares  *big.Int
	pool           *big.Int
}

type betKey struct {
	eventID uint64
	user    common.Address
}

type bet struct {
	amount, shares, isYes domain.Handle
	sharesClear           uint64
	yesClear              bool
	claimed               bool
}

type lastError struct {
	code domain.Handle
	at   int64
}

// Chain simulates one deployed market contract.
type Chain struct {
	address common.Address
	chainID *big.Int
	ledger  Ledger
	now     func() time.Time

	// PendingPolls is how many receipt lookups report NotFound before a
	// mined receipt is returned.
	PendingPolls int

	mu       sync.Mutex
	events   []*event
	bets     map[betKey]*bet
	lastErr  map[common.Address]lastError
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*ethtypes.Receipt
	polls    map[common.Hash]int
	block    int64
	sent     int
}

// New returns an empty market at address on chainID.
func New(address common.Address, chainID uint64, ledger Ledger, now func() time.Time) *Chain {
	if now == nil {
		now = time.Now
	}
	return &Chain{
		address:  address,
		chainID:  new(big.Int).SetUint64(chainID),
		ledger:   ledger,
		now:      now,
		bets:     make(map[betKey]*bet),
		lastErr:  make(map[common.Address]lastError),
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*ethtypes.Receipt),
		polls:    make(map[common.Hash]int),
	}
}

// Address returns the contract address.
func (c *Chain) Address() common.Address { return c.address }

// Sent returns the number of transactions accepted so far.
func (c *Chain) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

func (c *Chain) ChainID(context.Context) (*big.Int, error) { return new(big.Int).Set(c.chainID), nil }

func (c *Chain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (c *Chain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return 300_000, nil }

func (c *Chain) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil || *msg.To != c.address {
		return nil, nil
	}
	method, args, err := decode(msg.Data)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := c.view(method.Name, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (c *Chain) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if tx.Nonce() != c.nonces[from] {
		return fmt.Errorf("nonce too low or too high: got %d want %d", tx.Nonce(), c.nonces[from])
	}
	c.nonces[from]++
	c.sent++
	c.block++

	status := ethtypes.ReceiptStatusSuccessful
	if tx.To() == nil || *tx.To() != c.address {
		status = ethtypes.ReceiptStatusFailed
	} else if err := c.exec(from, tx.Value(), tx.Data()); err != nil {
		status = ethtypes.ReceiptStatusFailed
	}
	c.receipts[tx.Hash()] = &ethtypes.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(c.block),
		GasUsed:     tx.Gas(),
	}
	return nil
}

func (c *Chain) TransactionReceipt(_ context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if c.polls[hash] < c.PendingPolls {
		c.polls[hash]++
		return nil, ethereum.NotFound
	}
	return r, nil
}

func decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, errRevert
	}
	parsed := market.Parsed()
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

func (c *Chain) eventAt(id *big.Int) (*event, error) {
	if !id.IsUint64() || id.Uint64() >= uint64(len(c.events)) {
		return nil, errRevert
	}
	return c.events[id.Uint64()], nil
}

func (c *Chain) view(name string, args []interface{}) ([]interface{}, error) {
	switch name {
	case "getEventCount":
		return []interface{}{big.NewInt(int64(len(c.events)))}, nil
	case "getPredictionEvent":
		id := args[0].(*big.Int)
		ev, err := c.eventAt(id)
		if err != nil {
			return nil, err
		}
		return []interface{}{
			id, ev.description, big.NewInt(ev.start), big.NewInt(ev.end),
			ev.priceYes, ev.priceNo, ev.resolved, ev.outcome,
			ev.totalYesShares, ev.totalNoShares, ev.pool,
		}, nil
	case "getUserBet":
		b := c.bets[betKey{args[0].(*big.Int).Uint64(), args[1].(common.Address)}]
		if b == nil {
			return []interface{}{[32]byte{}, [32]byte{}, [32]byte{}, false}, nil
		}
		return []interface{}{[32]byte(b.amount), [32]byte(b.shares), [32]byte(b.isYes), true}, nil
	case "getPendingReward":
		return []interface{}{c.pending(args[0].(*big.Int).Uint64(), args[1].(common.Address))}, nil
	case "hasClaimedReward":
		b := c.bets[betKey{args[0].(*big.Int).Uint64(), args[1].(common.Address)}]
		return []interface{}{b != nil && b.claimed}, nil
	case "getLastError":
		le := c.lastErr[args[0].(common.Address)]
		return []interface{}{[32]byte(le.code), big.NewInt(le.at)}, nil
	}
	return nil, fmt.Errorf("%w: %s is not a view", errRevert, name)
}

func (c *Chain) pending(eventID uint64, user common.Address) *big.Int {
	if eventID >= uint64(len(c.events)) {
		return new(big.Int)
	}
	ev := c.events[eventID]
	b := c.bets[betKey{eventID, user}]
	if !ev.resolved || b == nil || b.claimed || b.yesClear != ev.outcome {
		return new(big.Int)
	}
	winning := ev.totalNoShares
	if ev.outcome {
		winning = ev.totalYesShares
	}
	if winning.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Mul(ev.pool, new(big.Int).SetUint64(b.sharesClear))
	return r.Div(r, winning)
}

func (c *Chain) exec(from common.Address, value *big.Int, data []byte) error {
	method, args, err := decode(data)
	if err != nil {
		return err
	}
	switch method.Name {
	case "createPredictionEvent":
		c.events = append(c.events, &event{
			description:    args[0].(string),
			start:          args[1].(*big.Int).Int64(),
			end:            args[2].(*big.Int).Int64(),
			priceYes:       args[3].(*big.Int),
			priceNo:        args[4].(*big.Int),
			totalYesShares: new(big.Int),
			totalNoShares:  new(big.Int),
			pool:           new(big.Int),
		})
		return nil
	case "placeBet":
		return c.placeBet(from, value, args)
	case "resolveEvent":
		ev, err := c.eventAt(args[0].(*big.Int))
		if err != nil || ev.resolved {
			return errRevert
		}
		ev.resolved = true
		ev.outcome = args[1].(bool)
		return nil
	case "claimRewards":
		id := args[0].(*big.Int)
		ev, err := c.eventAt(id)
		if err != nil {
			return err
		}
		if !ev.resolved {
			return c.setError(from, CodeNotResolved)
		}
		if c.pending(id.Uint64(), from).Sign() == 0 {
			return c.setError(from, CodeNothingToClaim)
		}
		c.bets[betKey{id.Uint64(), from}].claimed = true
		return c.setError(from, CodeNone)
	}
	return fmt.Errorf("%w: %s is not payable or unknown", errRevert, method.Name)
}

func (c *Chain) placeBet(from common.Address, value *big.Int, args []interface{}) error {
	id := args[0].(*big.Int)
	ev, err := c.eventAt(id)
	if err != nil {
		return err
	}
	shares := domain.Handle(args[1].([32]byte))
	isYes := domain.Handle(args[2].([32]byte))
	proof := args[3].([]byte)
	if err := c.ledger.VerifyProof([]domain.Handle{shares, isYes}, proof, c.address, from); err != nil {
		return errRevert
	}
	now := c.now().Unix()
	if ev.resolved || now < ev.start || now > ev.end {
		return c.setError(from, CodeNotActive)
	}
	key := betKey{id.Uint64(), from}
	if c.bets[key] != nil {
		return c.setError(from, CodeAlreadyBet)
	}
	sv, ok1 := c.ledger.Lookup(shares)
	dv, ok2 := c.ledger.Lookup(isYes)
	if !ok1 || !ok2 || sv.Type != domain.FheUint32 || dv.Type != domain.FheBool || !value.IsUint64() {
		return errRevert
	}
	price := ev.priceNo
	if dv.Raw == 1 {
		price = ev.priceYes
	}
	cost := new(big.Int).Mul(price, new(big.Int).SetUint64(sv.Raw))
	if value.Cmp(cost) < 0 {
		return c.setError(from, CodeInsufficientPayment)
	}
	amount, err := c.ledger.Register(domain.FheUint64, value.Uint64(), c.address, from)
	if err != nil {
		return err
	}
	c.bets[key] = &bet{amount: amount, shares: shares, isYes: isYes, sharesClear: sv.Raw, yesClear: dv.Raw == 1}
	if dv.Raw == 1 {
		ev.totalYesShares.Add(ev.totalYesShares, new(big.Int).SetUint64(sv.Raw))
	} else {
		ev.totalNoShares.Add(ev.totalNoShares, new(big.Int).SetUint64(sv.Raw))
	}
	ev.pool.Add(ev.pool, value)
	return c.setError(from, CodeNone)
}

func (c *Chain) setError(user common.Address, code uint64) error {
	h, err := c.ledger.Register(domain.FheUint8, code, c.address, user)
	if err != nil {
		return err
	}
	c.lastErr[user] = lastError{code: h, at: c.now().Unix()}
	return nil
}

var _ market.Backend = (*Chain)(nil)
