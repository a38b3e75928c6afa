package input

import (
	"context"
	"errors"
	"fmt"

	"filippo.io/hpke"
	"github.com/ethereum/go-ethereum/common"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
)

var errEmptyBatch = errors.New("input: no values to encrypt")

// Backend is what a Builder needs from the session.
type Backend interface {
	ChainID() uint64
	NetworkPublicKey() hpke.PublicKey
	RegisterInput(ctx context.Context, req domain.InputProofRequest) (domain.InputProofResponse, error)
}

// Builder accumulates values for one (contract, user) pair. It is not safe
// for concurrent use.
type Builder struct {
	backend  Backend
	contract common.Address
	user     common.Address
	slots    []Slot
	bits     int
	done     bool
}

// New returns an empty builder. A zero contract or user address means no
// account is available and fails with domain.ErrWalletNotConnected.
func New(backend Backend, contract, user common.Address) (*Builder, error) {
	if user == (common.Address{}) {
		return nil, fmt.Errorf("%w: no user address", domain.ErrWalletNotConnected)
	}
	if contract == (common.Address{}) {
		return nil, fmt.Errorf("%w: no contract address", domain.ErrWalletNotConnected)
	}
	return &Builder{backend: backend, contract: contract, user: user}, nil
}

// AddBool appends an ebool.
func (b *Builder) AddBool(v bool) error {
	var raw uint64
	if v {
		raw = 1
	}
	return b.add(domain.FheBool, raw)
}

// AddUint8 appends an euint8.
func (b *Builder) AddUint8(v uint64) error { return b.add(domain.FheUint8, v) }

// AddUint32 appends an euint32.
func (b *Builder) AddUint32(v uint64) error { return b.add(domain.FheUint32, v) }

// AddUint64 appends an euint64.
func (b *Builder) AddUint64(v uint64) error { return b.add(domain.FheUint64, v) }

// Len returns the number of values added so far.
func (b *Builder) Len() int { return len(b.slots) }

func (b *Builder) add(t domain.FheType, v uint64) error {
	if b.done {
		return domain.ErrBuilderFinalized
	}
	if v > t.Max() {
		return fmt.Errorf("%w: %d does not fit %s", domain.ErrValueOutOfRange, v, t)
	}
	if len(b.slots)+1 > MaxValues || b.bits+t.Bits() > MaxBits {
		return fmt.Errorf("%w: limit is %d values or %d bits", domain.ErrTooManyInputs, MaxValues, MaxBits)
	}
	b.slots = append(b.slots, Slot{Type: t, Value: v})
	b.bits += t.Bits()
	return nil
}

// Encrypt seals the batch, registers it with the relayer and returns the
// handles in insertion order with their proof. The builder is finalized
// whether or not Encrypt succeeds.
func (b *Builder) Encrypt(ctx context.Context) (domain.EncryptedInput, error) {
	if b.done {
		return domain.EncryptedInput{}, domain.ErrBuilderFinalized
	}
	b.done = true

	if len(b.slots) == 0 {
		return domain.EncryptedInput{}, errEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return domain.EncryptedInput{}, err
	}

	chainID := b.backend.ChainID()
	packed := Pack(b.slots)
	info, aad := SealContext(chainID, b.contract, b.user)
	sealed, err := crypto.SealInput(b.backend.NetworkPublicKey(), info, aad, packed)
	crypto.Wipe(packed)
	if err != nil {
		return domain.EncryptedInput{}, fmt.Errorf("input: %w", err)
	}

	resp, err := b.backend.RegisterInput(ctx, domain.InputProofRequest{
		ContractAddress: b.contract,
		UserAddress:     b.user,
		ContractChainID: chainID,
		Ciphertext:      crypto.RawHex(sealed),
		ExtraData:       "0x00",
	})
	if err != nil {
		return domain.EncryptedInput{}, fmt.Errorf("input: register: %w", err)
	}
	return b.validate(chainID, resp)
}

func (b *Builder) validate(chainID uint64, resp domain.InputProofResponse) (domain.EncryptedInput, error) {
	if len(resp.Handles) != len(b.slots) {
		return domain.EncryptedInput{}, fmt.Errorf("%w: %d handles for %d values",
			domain.ErrProtocolViolation, len(resp.Handles), len(b.slots))
	}
	handles := make([]domain.Handle, len(resp.Handles))
	for i, wh := range resp.Handles {
		h := wh.Handle
		switch {
		case int(h.Index()) != i:
			return domain.EncryptedInput{}, fmt.Errorf("%w: handle %d has index %d", domain.ErrProtocolViolation, i, h.Index())
		case h.Type() != b.slots[i].Type:
			return domain.EncryptedInput{}, fmt.Errorf("%w: handle %d is %s, want %s", domain.ErrProtocolViolation, i, h.Type(), b.slots[i].Type)
		case h.ChainID() != chainID:
			return domain.EncryptedInput{}, fmt.Errorf("%w: handle %d is for chain %d", domain.ErrProtocolViolation, i, h.ChainID())
		}
		handles[i] = h
	}
	proof, err := crypto.ParseHex(resp.InputProof)
	if err != nil || len(proof) == 0 {
		return domain.EncryptedInput{}, fmt.Errorf("%w: bad input proof", domain.ErrProtocolViolation)
	}
	return domain.EncryptedInput{Handles: handles, InputProof: proof}, nil
}
