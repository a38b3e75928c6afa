package bet

import (
	"math/big"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		wei  *big.Int
		want string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{big.NewInt(1e15), "0.001"},
		{big.NewInt(1e18), "1"},
		{big.NewInt(1_234_567_000_000_000_000), "1.2345"},
		{new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)), "10"},
		{big.NewInt(1), "0"},
		{big.NewInt(-5e17), "-0.5"},
	}
	for _, c := range cases {
		if got := FormatAmount(c.wei); got != c.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", c.wei, got, c.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(3); got != "You have already placed a bet on this event" {
		t.Fatalf("code 3: %q", got)
	}
	if got := ErrorMessage(42); got != "Unknown error (code 42)" {
		t.Fatalf("unknown code: %q", got)
	}
}

func TestFormatDirection(t *testing.T) {
	if FormatDirection(true) != "YES" || FormatDirection(false) != "NO" {
		t.Fatal("unexpected direction labels")
	}
}
