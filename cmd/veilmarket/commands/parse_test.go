package commands

import (
	"testing"
	"time"
)

func TestParseEther(t *testing.T) {
	cases := map[string]string{
		"0.001": "1000000000000000",
		"1":     "1000000000000000000",
		"10":    "10000000000000000000",
		"1.5":   "1500000000000000000",
	}
	for in, want := range cases {
		got, err := parseEther(in)
		if err != nil {
			t.Fatalf("parseEther(%q): %v", in, err)
		}
		if got.String() != want {
			t.Errorf("parseEther(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "abc", "-1", "0.0000000000000000001"} {
		if _, err := parseEther(bad); err == nil {
			t.Errorf("parseEther(%q) succeeded", bad)
		}
	}
}

func TestParseDirectionAndShares(t *testing.T) {
	if v, err := parseDirection("YES"); err != nil || !v {
		t.Fatalf("YES: %v %v", v, err)
	}
	if v, err := parseDirection("no"); err != nil || v {
		t.Fatalf("no: %v %v", v, err)
	}
	if _, err := parseDirection("maybe"); err == nil {
		t.Fatal("maybe accepted")
	}
	if _, err := parseShares("0"); err == nil {
		t.Fatal("zero shares accepted")
	}
	if _, err := parseShares("4294967296"); err == nil {
		t.Fatal("overflowing shares accepted")
	}
}

func TestParseTime(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	got, err := parseTime("+2h", now)
	if err != nil || !got.Equal(now.Add(2*time.Hour)) {
		t.Fatalf("+2h: %v %v", got, err)
	}
	got, err = parseTime("2030-01-02T03:04:05Z", now)
	if err != nil || got.Year() != 2030 {
		t.Fatalf("rfc3339: %v %v", got, err)
	}
	if _, err := parseTime("tomorrow", now); err == nil {
		t.Fatal("tomorrow accepted")
	}
}
