package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/eip712"
)

// ErrRejected is returned when the user declines a signing request. It
// wraps domain.ErrSignerRejected.
var ErrRejected = fmt.Errorf("wallet: %w", domain.ErrSignerRejected)

// RequestKind distinguishes what the user is asked to sign.
type RequestKind int

const (
	KindTypedData RequestKind = iota
	KindTransaction
)

func (k RequestKind) String() string {
	if k == KindTransaction {
		return "transaction"
	}
	return "typed data"
}

// Request describes a signing request shown to the approver.
type Request struct {
	Kind    RequestKind
	From    common.Address
	Summary string
}

// Approver decides whether a signing request may proceed.
type Approver func(ctx context.Context, req Request) (bool, error)

// AutoApprove approves every request.
func AutoApprove(context.Context, Request) (bool, error) { return true, nil }

// Local signs with an in-memory secp256k1 key.
type Local struct {
	key     *ecdsa.PrivateKey
	addr    common.Address
	approve Approver
}

// Option configures a Local wallet.
type Option func(*Local)

// WithApprover sets the approver consulted before each signature.
func WithApprover(a Approver) Option {
	return func(w *Local) { w.approve = a }
}

// NewLocal wraps key. Without WithApprover every request is approved.
func NewLocal(key *ecdsa.PrivateKey, opts ...Option) *Local {
	w := &Local{
		key:     key,
		addr:    crypto.PubkeyToAddress(key.PublicKey),
		approve: AutoApprove,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FromKey builds a Local wallet from a stored wallet key.
func FromKey(k domain.WalletKey, opts ...Option) (*Local, error) {
	key, err := crypto.ToECDSA(k.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("wallet: load key: %w", err)
	}
	return NewLocal(key, opts...), nil
}

// Address returns the account address.
func (w *Local) Address() common.Address { return w.addr }

// SignTypedData returns an r || s || v signature with v in {27, 28}.
func (w *Local) SignTypedData(ctx context.Context, td apitypes.TypedData) ([]byte, error) {
	if err := w.ask(ctx, Request{Kind: KindTypedData, From: w.addr, Summary: summarizeTypedData(td)}); err != nil {
		return nil, err
	}
	hash, err := eip712.Hash(td)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(hash.Bytes(), w.key)
	if err != nil {
		return nil, fmt.Errorf("wallet: sign typed data: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// SignTx signs tx for chainID.
func (w *Local) SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	summary := fmt.Sprintf("send %s wei to %s", tx.Value(), tx.To().Hex())
	if err := w.ask(ctx, Request{Kind: KindTransaction, From: w.addr, Summary: summary}); err != nil {
		return nil, err
	}
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("wallet: sign transaction: %w", err)
	}
	return signed, nil
}

func (w *Local) ask(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ok, err := w.approve(ctx, req)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	return nil
}

func summarizeTypedData(td apitypes.TypedData) string {
	if td.PrimaryType != eip712.PrimaryType {
		return td.PrimaryType
	}
	return fmt.Sprintf("authorize decryption for contracts %v (valid %s days from %s)",
		td.Message["contractAddresses"], td.Message["durationDays"], td.Message["startTimestamp"])
}

var _ domain.Signer = (*Local)(nil)
