package crypto_test

import (
	"bytes"
	"testing"

	"veilmarket/internal/crypto"
)

func TestSealInput_RoundTrip(t *testing.T) {
	priv, err := crypto.GenerateNetworkKey()
	if err != nil {
		t.Fatalf("GenerateNetworkKey: %v", err)
	}
	pub, err := crypto.ParseNetworkKey(crypto.Hex(priv.PublicKey().Bytes()))
	if err != nil {
		t.Fatalf("ParseNetworkKey: %v", err)
	}
	info, aad := []byte("chain"), []byte("contract|user")
	sealed, err := crypto.SealInput(pub, info, aad, []byte{4, 0, 0, 0, 7})
	if err != nil {
		t.Fatalf("SealInput: %v", err)
	}
	got, err := crypto.OpenInput(priv, info, aad, sealed)
	if err != nil {
		t.Fatalf("OpenInput: %v", err)
	}
	if !bytes.Equal(got, []byte{4, 0, 0, 0, 7}) {
		t.Fatalf("got %x", got)
	}
}

func TestOpenInput_BindsContext(t *testing.T) {
	priv, _ := crypto.GenerateNetworkKey()
	sealed, err := crypto.SealInput(priv.PublicKey(), []byte("a"), []byte("b"), []byte{1})
	if err != nil {
		t.Fatalf("SealInput: %v", err)
	}
	if _, err := crypto.OpenInput(priv, []byte("x"), []byte("b"), sealed); err == nil {
		t.Fatal("opened with wrong info")
	}
	if _, err := crypto.OpenInput(priv, []byte("a"), []byte("x"), sealed); err == nil {
		t.Fatal("opened with wrong aad")
	}
	if _, err := crypto.OpenInput(priv, []byte("a"), []byte("b"), sealed[:4]); err == nil {
		t.Fatal("opened truncated input")
	}
}

func TestSealInput_OpenWithoutCopy(t *testing.T) {
	priv, err := crypto.GenerateNetworkKey()
	if err != nil {
		t.Fatalf("GenerateNetworkKey: %v", err)
	}
	pt := []byte{5, 0, 0, 0, 0, 0, 0, 0, 42}
	for _, c := range []struct{ info, aad []byte }{
		{nil, nil},
		{[]byte("info"), nil},
		{nil, []byte("aad")},
		{[]byte("info"), []byte("aad")},
	} {
		sealed, err := crypto.SealInput(priv.PublicKey(), c.info, c.aad, pt)
		if err != nil {
			t.Fatalf("SealInput: %v", err)
		}
		before := append([]byte(nil), sealed...)
		got, err := crypto.OpenInput(priv, c.info, c.aad, sealed)
		if err != nil {
			t.Fatalf("OpenInput(info=%q, aad=%q): %v", c.info, c.aad, err)
		}
		if !bytes.Equal(got, pt) {
			t.Fatalf("got %x", got)
		}
		if !bytes.Equal(sealed, before) {
			t.Fatal("OpenInput modified its input")
		}
	}
}
