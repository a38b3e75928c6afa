package input_test

import (
	"context"
	"errors"
	"testing"

	"filippo.io/hpke"
	"github.com/ethereum/go-ethereum/common"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/input"
)

var (
	contract = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	user     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

// fakeBackend opens the batch with the network key and mints one handle per
// slot, the way the relayer does.
type fakeBackend struct {
	priv    hpke.PrivateKey
	chainID uint64
	calls   int
	got     []input.Slot
	mangle  func(*domain.InputProofResponse)
	err     error
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	priv, err := crypto.GenerateNetworkKey()
	if err != nil {
		t.Fatalf("GenerateNetworkKey: %v", err)
	}
	return &fakeBackend{priv: priv, chainID: 31337}
}

func (f *fakeBackend) ChainID() uint64                  { return f.chainID }
func (f *fakeBackend) NetworkPublicKey() hpke.PublicKey { return f.priv.PublicKey() }

func (f *fakeBackend) RegisterInput(_ context.Context, req domain.InputProofRequest) (domain.InputProofResponse, error) {
	f.calls++
	if f.err != nil {
		return domain.InputProofResponse{}, f.err
	}
	sealed, err := crypto.ParseHex(req.Ciphertext)
	if err != nil {
		return domain.InputProofResponse{}, err
	}
	info, aad := input.SealContext(req.ContractChainID, req.ContractAddress, req.UserAddress)
	packed, err := crypto.OpenInput(f.priv, info, aad, sealed)
	if err != nil {
		return domain.InputProofResponse{}, err
	}
	slots, err := input.Unpack(packed)
	if err != nil {
		return domain.InputProofResponse{}, err
	}
	f.got = slots
	resp := domain.InputProofResponse{InputProof: "0xfeed"}
	for i, s := range slots {
		h := domain.ComposeHandle([]byte{byte(f.calls)}, uint8(i), req.ContractChainID, s.Type)
		resp.Handles = append(resp.Handles, domain.WireHandle{Handle: h})
	}
	if f.mangle != nil {
		f.mangle(&resp)
	}
	return resp, nil
}

func TestEncrypt_PositionalHandles(t *testing.T) {
	be := newFakeBackend(t)
	b, err := input.New(be, contract, user)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.AddUint64(1_000_000_000_000_000); err != nil {
		t.Fatal(err)
	}
	if err := b.AddUint32(7); err != nil {
		t.Fatal(err)
	}
	if err := b.AddBool(true); err != nil {
		t.Fatal(err)
	}

	out, err := b.Encrypt(context.Background())
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(out.Handles) != 3 {
		t.Fatalf("got %d handles, want 3", len(out.Handles))
	}
	want := []input.Slot{
		{Type: domain.FheUint64, Value: 1_000_000_000_000_000},
		{Type: domain.FheUint32, Value: 7},
		{Type: domain.FheBool, Value: 1},
	}
	for i, h := range out.Handles {
		if h.Type() != want[i].Type || int(h.Index()) != i {
			t.Fatalf("handle %d: type %s index %d", i, h.Type(), h.Index())
		}
		if be.got[i] != want[i] {
			t.Fatalf("slot %d: got %+v want %+v", i, be.got[i], want[i])
		}
	}
	if len(out.InputProof) == 0 {
		t.Fatal("empty proof")
	}
}

func TestEncrypt_OnlyOnce(t *testing.T) {
	be := newFakeBackend(t)
	b, _ := input.New(be, contract, user)
	_ = b.AddBool(false)
	if _, err := b.Encrypt(context.Background()); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := b.Encrypt(context.Background()); !errors.Is(err, domain.ErrBuilderFinalized) {
		t.Fatalf("second Encrypt: want ErrBuilderFinalized, got %v", err)
	}
	if err := b.AddUint32(1); !errors.Is(err, domain.ErrBuilderFinalized) {
		t.Fatalf("Add after Encrypt: want ErrBuilderFinalized, got %v", err)
	}
	if be.calls != 1 {
		t.Fatalf("relayer called %d times", be.calls)
	}
}

func TestEncrypt_FailureFinalizes(t *testing.T) {
	be := newFakeBackend(t)
	be.err = domain.ErrRelayerUnavailable
	b, _ := input.New(be, contract, user)
	_ = b.AddUint8(3)
	if _, err := b.Encrypt(context.Background()); !errors.Is(err, domain.ErrRelayerUnavailable) {
		t.Fatalf("want ErrRelayerUnavailable, got %v", err)
	}
	if _, err := b.Encrypt(context.Background()); !errors.Is(err, domain.ErrBuilderFinalized) {
		t.Fatalf("want ErrBuilderFinalized, got %v", err)
	}
}

func TestAdd_RangeChecks(t *testing.T) {
	b, _ := input.New(newFakeBackend(t), contract, user)
	if err := b.AddUint32(1 << 32); !errors.Is(err, domain.ErrValueOutOfRange) {
		t.Fatalf("AddUint32(2^32): want ErrValueOutOfRange, got %v", err)
	}
	if err := b.AddUint32(1<<32 - 1); err != nil {
		t.Fatalf("AddUint32(2^32-1): %v", err)
	}
	if err := b.AddUint8(256); !errors.Is(err, domain.ErrValueOutOfRange) {
		t.Fatalf("AddUint8(256): want ErrValueOutOfRange, got %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("rejected values were added: len %d", b.Len())
	}
}

func TestAdd_BatchLimit(t *testing.T) {
	b, _ := input.New(newFakeBackend(t), contract, user)
	for i := 0; i < input.MaxBits/64; i++ {
		if err := b.AddUint64(uint64(i)); err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
	}
	if err := b.AddBool(true); !errors.Is(err, domain.ErrTooManyInputs) {
		t.Fatalf("want ErrTooManyInputs, got %v", err)
	}
}

func TestNew_NoWallet(t *testing.T) {
	if _, err := input.New(newFakeBackend(t), contract, common.Address{}); !errors.Is(err, domain.ErrWalletNotConnected) {
		t.Fatalf("want ErrWalletNotConnected, got %v", err)
	}
}

func TestEncrypt_RejectsMismatchedHandles(t *testing.T) {
	cases := map[string]func(*domain.InputProofResponse){
		"missing handle": func(r *domain.InputProofResponse) { r.Handles = r.Handles[:1] },
		"swapped order":  func(r *domain.InputProofResponse) { r.Handles[0], r.Handles[1] = r.Handles[1], r.Handles[0] },
		"wrong chain": func(r *domain.InputProofResponse) {
			h := r.Handles[0].Handle
			r.Handles[0].Handle = domain.ComposeHandle(h[:21], h.Index(), 1, h.Type())
		},
		"empty proof": func(r *domain.InputProofResponse) { r.InputProof = "" },
	}
	for name, mangle := range cases {
		t.Run(name, func(t *testing.T) {
			be := newFakeBackend(t)
			be.mangle = mangle
			b, _ := input.New(be, contract, user)
			_ = b.AddUint32(1)
			_ = b.AddBool(true)
			if _, err := b.Encrypt(context.Background()); !errors.Is(err, domain.ErrProtocolViolation) {
				t.Fatalf("want ErrProtocolViolation, got %v", err)
			}
		})
	}
}

func TestPackUnpack(t *testing.T) {
	slots := []input.Slot{
		{Type: domain.FheBool, Value: 1},
		{Type: domain.FheUint8, Value: 200},
		{Type: domain.FheUint32, Value: 1<<32 - 1},
		{Type: domain.FheUint64, Value: 1<<64 - 1},
	}
	packed := input.Pack(slots)
	if len(packed) != 4+1+1+4+8 {
		t.Fatalf("packed length %d", len(packed))
	}
	got, err := input.Unpack(packed)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	for i := range slots {
		if got[i] != slots[i] {
			t.Fatalf("slot %d: %+v", i, got[i])
		}
	}
	if _, err := input.Unpack(packed[:len(packed)-1]); err == nil {
		t.Fatal("truncated batch accepted")
	}
}
