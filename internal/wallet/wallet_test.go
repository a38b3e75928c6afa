package wallet_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/eip712"
	"veilmarket/internal/wallet"
)

func newLocal(t *testing.T, opts ...wallet.Option) *wallet.Local {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return wallet.NewLocal(key, opts...)
}

func testTypedData() eip712.Domain {
	return eip712.Domain{ChainID: 31337, VerifyingContract: common.Address{0xaa}}
}

func TestSignTypedData_Recoverable(t *testing.T) {
	w := newLocal(t)
	td := eip712.NewUserDecryptRequest(testTypedData(), domain.AuthorizationMessage{
		PublicKey:         []byte{1},
		ContractAddresses: []common.Address{{0xbb}},
		StartTimestamp:    1,
		DurationDays:      10,
	})
	sig, err := w.SignTypedData(context.Background(), td)
	if err != nil {
		t.Fatalf("SignTypedData: %v", err)
	}
	if v := sig[64]; v != 27 && v != 28 {
		t.Fatalf("unexpected recovery id %d", v)
	}
	if !eip712.Verify(td, sig, w.Address()) {
		t.Fatal("signature does not recover to wallet address")
	}
}

func TestSignTypedData_Rejected(t *testing.T) {
	w := newLocal(t, wallet.WithApprover(func(context.Context, wallet.Request) (bool, error) {
		return false, nil
	}))
	td := eip712.NewUserDecryptRequest(testTypedData(), domain.AuthorizationMessage{PublicKey: []byte{1}})
	if _, err := w.SignTypedData(context.Background(), td); !errors.Is(err, wallet.ErrRejected) {
		t.Fatalf("want ErrRejected, got %v", err)
	}
	if !errors.Is(wallet.ErrRejected, domain.ErrSignerRejected) {
		t.Fatal("ErrRejected does not wrap domain.ErrSignerRejected")
	}
}

func TestSignTx(t *testing.T) {
	w := newLocal(t)
	to := common.Address{0xcc}
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{Nonce: 1, To: &to, Value: big.NewInt(5), Gas: 21000, GasPrice: big.NewInt(1)})
	chainID := big.NewInt(31337)
	signed, err := w.SignTx(context.Background(), tx, chainID)
	if err != nil {
		t.Fatalf("SignTx: %v", err)
	}
	from, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(chainID), signed)
	if err != nil {
		t.Fatalf("Sender: %v", err)
	}
	if from != w.Address() {
		t.Fatalf("sender %s, want %s", from, w.Address())
	}
}

func TestPromptApprover(t *testing.T) {
	var out bytes.Buffer
	approve := wallet.PromptApprover(strings.NewReader("y\n"), &out)
	ok, err := approve(context.Background(), wallet.Request{Summary: "test"})
	if err != nil || !ok {
		t.Fatalf("approve = %v, %v", ok, err)
	}
	if !strings.Contains(out.String(), "test") {
		t.Fatalf("prompt did not include summary: %q", out.String())
	}

	deny := wallet.PromptApprover(strings.NewReader("\n"), &out)
	if ok, _ := deny(context.Background(), wallet.Request{}); ok {
		t.Fatal("empty answer approved the request")
	}
}
