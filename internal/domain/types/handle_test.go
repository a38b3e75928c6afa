package types_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"veilmarket/internal/domain/types"
)

func TestParseHandle_Representations(t *testing.T) {
	want := types.ComposeHandle([]byte("digest-digest-digest-"), 1, 11155111, types.FheUint32)
	hexNoPrefix := strings.TrimPrefix(want.Hex(), "0x")

	inputs := []any{
		want,
		[32]byte(want),
		want.Bytes(),
		want.Hex(),
		hexNoPrefix,
		strings.ToUpper(hexNoPrefix),
	}
	for i, in := range inputs {
		got, err := types.ParseHandle(in)
		if err != nil {
			t.Fatalf("input %d (%T): %v", i, in, err)
		}
		if got != want {
			t.Fatalf("input %d (%T): got %s, want %s", i, in, got, want)
		}
	}
}

func TestParseHandle_Rejects(t *testing.T) {
	for _, in := range []any{nil, 42, "0x1234", make([]byte, 31), strings.Repeat("zz", 32)} {
		if _, err := types.ParseHandle(in); !errors.Is(err, types.ErrInvalidHandle) {
			t.Fatalf("ParseHandle(%v): want ErrInvalidHandle, got %v", in, err)
		}
	}
}

func TestHandle_Layout(t *testing.T) {
	h := types.ComposeHandle(make([]byte, 32), 7, 31337, types.FheBool)
	if h.Index() != 7 || h.ChainID() != 31337 || h.Type() != types.FheBool || h.Version() != types.HandleVersion {
		t.Fatalf("unexpected layout: index=%d chain=%d type=%s version=%d", h.Index(), h.ChainID(), h.Type(), h.Version())
	}
}

func TestHandle_JSONIsCanonicalHex(t *testing.T) {
	h := types.ComposeHandle([]byte{0xab}, 0, 1, types.FheUint64)
	b, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"`+h.Hex()+`"` {
		t.Fatalf("got %s", b)
	}
	var back types.Handle
	if err := json.Unmarshal(b, &back); err != nil || back != h {
		t.Fatalf("unmarshal: %v (%s)", err, back)
	}
}
