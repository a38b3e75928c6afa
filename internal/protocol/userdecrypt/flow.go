package userdecrypt

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/eip712"
)

// State is a step of a Flow.
type State int

const (
	Pending State = iota
	KeypairGenerated
	MessageComposed
	Signed
	Submitted
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case KeypairGenerated:
		return "keypair-generated"
	case MessageComposed:
		return "message-composed"
	case Signed:
		return "signed"
	case Submitted:
		return "submitted"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

var (
	// ErrInvalidTransition is returned when a step is called out of order.
	ErrInvalidTransition = errors.New("userdecrypt: invalid state transition")

	// ErrFlowSpent is returned when a finished flow is used again.
	ErrFlowSpent = errors.New("userdecrypt: flow already finished")
)

// Backend is what a Flow needs from the session.
type Backend interface {
	ChainID() uint64
	GatewayChainID() uint64
	DecryptionVerifier() common.Address
	UserDecrypt(ctx context.Context, req domain.UserDecryptRequest) (domain.UserDecryptResponse, error)
}

// Flow is one decryption request. It is not safe for concurrent use.
type Flow struct {
	backend      Backend
	signer       domain.Signer
	pairs        []domain.HandleContractPair
	contracts    []common.Address
	validityDays int
	now          func() time.Time
	log          *logrus.Entry

	state     State
	keypair   domain.DecryptionKeypair
	typed     apitypes.TypedData
	message   domain.AuthorizationMessage
	signature []byte
	response  domain.UserDecryptResponse
}

// NewFlow prepares a flow for pairs. Handles must already be deduplicated.
func NewFlow(backend Backend, signer domain.Signer, pairs []domain.HandleContractPair, opts ...Option) *Flow {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	seen := make(map[common.Address]bool)
	var contracts []common.Address
	for _, p := range pairs {
		if !seen[p.ContractAddress] {
			seen[p.ContractAddress] = true
			contracts = append(contracts, p.ContractAddress)
		}
	}
	return &Flow{
		backend:      backend,
		signer:       signer,
		pairs:        pairs,
		contracts:    contracts,
		validityDays: o.validityDays,
		now:          o.now,
		log:          o.log,
	}
}

// State returns the current state.
func (f *Flow) State() State { return f.state }

// Message returns the authorization composed for this flow.
func (f *Flow) Message() domain.AuthorizationMessage { return f.message }

func (f *Flow) advance(from, to State, step func() error) error {
	switch {
	case f.state == Resolved || f.state == Failed:
		return ErrFlowSpent
	case f.state != from:
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, to, f.state)
	}
	if err := step(); err != nil {
		f.fail(err)
		return err
	}
	f.log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("flow step")
	f.state = to
	return nil
}

func (f *Flow) fail(err error) {
	f.log.WithError(err).WithField("at", f.state).Debug("flow failed")
	f.state = Failed
	f.wipe()
}

func (f *Flow) wipe() {
	crypto.WipeKeypair(&f.keypair)
	crypto.Wipe(f.signature)
}

// GenerateKeypair creates the ephemeral keypair.
func (f *Flow) GenerateKeypair() error {
	return f.advance(Pending, KeypairGenerated, func() error {
		kp, err := crypto.GenerateDecryptionKeypair()
		if err != nil {
			return fmt.Errorf("userdecrypt: generate keypair: %w", err)
		}
		f.keypair = kp
		return nil
	})
}

// ComposeMessage builds the typed-data authorization over the public key.
func (f *Flow) ComposeMessage() error {
	return f.advance(KeypairGenerated, MessageComposed, func() error {
		f.message = domain.AuthorizationMessage{
			PublicKey:         f.keypair.Public.Slice(),
			ContractAddresses: f.contracts,
			StartTimestamp:    f.now().Unix(),
			DurationDays:      f.validityDays,
		}
		f.typed = eip712.NewUserDecryptRequest(eip712.Domain{
			ChainID:           f.backend.GatewayChainID(),
			VerifyingContract: f.backend.DecryptionVerifier(),
		}, f.message)
		return nil
	})
}

// Sign asks the wallet to sign the authorization.
func (f *Flow) Sign(ctx context.Context) error {
	return f.advance(MessageComposed, Signed, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sig, err := f.signer.SignTypedData(ctx, f.typed)
		if errors.Is(err, domain.ErrSignerRejected) {
			return fmt.Errorf("%w: %w", domain.ErrUserRejectedSignature, err)
		}
		if err != nil {
			return fmt.Errorf("userdecrypt: sign: %w", err)
		}
		if len(sig) != eip712.SignatureSize {
			return fmt.Errorf("userdecrypt: wallet returned %d-byte signature", len(sig))
		}
		f.signature = sig
		return nil
	})
}

// Submit sends the signed request to the relayer.
func (f *Flow) Submit(ctx context.Context) error {
	return f.advance(Signed, Submitted, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := domain.UserDecryptRequest{
			HandleContractPairs: f.pairs,
			RequestValidity: domain.RequestValidity{
				StartTimestamp: strconv.FormatInt(f.message.StartTimestamp, 10),
				DurationDays:   strconv.Itoa(f.message.DurationDays),
			},
			ContractsChainID:  strconv.FormatUint(f.backend.ChainID(), 10),
			ContractAddresses: f.contracts,
			UserAddress:       f.signer.Address(),
			Signature:         crypto.RawHex(f.signature),
			PublicKey:         crypto.RawHex(f.message.PublicKey),
		}
		resp, err := f.backend.UserDecrypt(ctx, req)
		if err != nil {
			return err
		}
		f.response = resp
		return nil
	})
}

// Resolve opens the re-encrypted values. Every requested handle must be
// present; otherwise nothing is returned.
func (f *Flow) Resolve() (domain.DecryptionResult, error) {
	var out domain.DecryptionResult
	err := f.advance(Submitted, Resolved, func() error {
		sealed := make(map[domain.Handle]string, len(f.response.Values))
		for _, v := range f.response.Values {
			sealed[v.Handle.Handle] = v.Ciphertext
		}
		res := make(domain.DecryptionResult, len(f.pairs))
		for _, p := range f.pairs {
			ct, ok := sealed[p.Handle]
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrIncompleteDecryption, p.Handle)
			}
			v, err := f.open(p.Handle, ct)
			if err != nil {
				return err
			}
			res[p.Handle] = v
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.wipe()
	return out, nil
}

func (f *Flow) open(h domain.Handle, hexCT string) (domain.ClearValue, error) {
	raw, err := crypto.ParseHex(hexCT)
	if err != nil {
		return domain.ClearValue{}, fmt.Errorf("%w: ciphertext for %s: %v", domain.ErrProtocolViolation, h, err)
	}
	pt, err := crypto.OpenSealed(f.keypair, raw)
	if err != nil {
		return domain.ClearValue{}, fmt.Errorf("%w: ciphertext for %s: %v", domain.ErrProtocolViolation, h, err)
	}
	defer crypto.Wipe(pt)
	n := new(big.Int).SetBytes(pt)
	if !n.IsUint64() {
		return domain.ClearValue{}, fmt.Errorf("%w: value for %s exceeds 64 bits", domain.ErrProtocolViolation, h)
	}
	v, err := domain.NewClearValue(h.Type(), n.Uint64())
	if err != nil {
		return domain.ClearValue{}, fmt.Errorf("%w: %v", domain.ErrProtocolViolation, err)
	}
	return v, nil
}

// Run walks every step, checking ctx between them. The keypair is wiped
// when Run returns.
func (f *Flow) Run(ctx context.Context) (domain.DecryptionResult, error) {
	defer f.wipe()
	steps := []func() error{
		f.GenerateKeypair,
		f.ComposeMessage,
		func() error { return f.Sign(ctx) },
		func() error { return f.Submit(ctx) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			f.fail(err)
			return nil, err
		}
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		f.fail(err)
		return nil, err
	}
	return f.Resolve()
}
