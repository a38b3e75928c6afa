package eip712_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/eip712"
)

var (
	testDomain = eip712.Domain{
		ChainID:           55815,
		VerifyingContract: common.HexToAddress("0xb6E160B1ff80D67Bfe90A85eE06Ce0A2613607D1"),
	}
	testMessage = domain.AuthorizationMessage{
		PublicKey:         []byte{1, 2, 3, 4},
		ContractAddresses: []common.Address{common.HexToAddress("0x042155e8Ee5688adEBe209E3a04668b7fB10153e")},
		StartTimestamp:    1700000000,
		DurationDays:      10,
	}
)

func TestHash_Deterministic(t *testing.T) {
	h1, err := eip712.Hash(eip712.NewUserDecryptRequest(testDomain, testMessage))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := eip712.Hash(eip712.NewUserDecryptRequest(testDomain, testMessage))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash differs across builds: %s vs %s", h1, h2)
	}
}

func TestHash_BindsEveryField(t *testing.T) {
	base, err := eip712.Hash(eip712.NewUserDecryptRequest(testDomain, testMessage))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	variants := map[string]func(d *eip712.Domain, m *domain.AuthorizationMessage){
		"chain":     func(d *eip712.Domain, _ *domain.AuthorizationMessage) { d.ChainID++ },
		"verifier":  func(d *eip712.Domain, _ *domain.AuthorizationMessage) { d.VerifyingContract = common.Address{1} },
		"publicKey": func(_ *eip712.Domain, m *domain.AuthorizationMessage) { m.PublicKey = []byte{9} },
		"contracts": func(_ *eip712.Domain, m *domain.AuthorizationMessage) {
			m.ContractAddresses = []common.Address{{2}}
		},
		"start":    func(_ *eip712.Domain, m *domain.AuthorizationMessage) { m.StartTimestamp++ },
		"duration": func(_ *eip712.Domain, m *domain.AuthorizationMessage) { m.DurationDays = 1 },
	}
	for name, mutate := range variants {
		d, m := testDomain, testMessage
		mutate(&d, &m)
		h, err := eip712.Hash(eip712.NewUserDecryptRequest(d, m))
		if err != nil {
			t.Fatalf("%s: Hash: %v", name, err)
		}
		if h == base {
			t.Fatalf("%s: hash unchanged", name)
		}
	}
}

func TestRecoverSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	td := eip712.NewUserDecryptRequest(testDomain, testMessage)
	hash, err := eip712.Hash(td)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sig[64] += 27

	addr := crypto.PubkeyToAddress(key.PublicKey)
	if !eip712.Verify(td, sig, addr) {
		t.Fatal("signature did not verify")
	}
	if eip712.Verify(td, sig, common.Address{1}) {
		t.Fatal("signature verified for the wrong address")
	}
	if _, err := eip712.RecoverSigner(td, sig[:64]); err == nil {
		t.Fatal("expected error for short signature")
	}
}
