package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maxatome/go-testdeep/td"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		network string
		want    Network
	}{
		{
			name:    "empty file selects sepolia",
			yaml:    ``,
			network: "sepolia",
			want:    Builtin()["sepolia"],
		},
		{
			name: "override merges over builtin",
			yaml: `
network: localhost
networks:
  localhost:
    rpc-url: http://node:8545
`,
			network: "localhost",
			want: func() Network {
				n := Builtin()["localhost"]
				n.RPCURL = "http://node:8545"
				return n
			}(),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml))
			td.CmpNoError(t, err)
			td.Cmp(t, cfg.Network, tc.network)
			n, err := cfg.Resolve(Overrides{})
			td.CmpNoError(t, err)
			td.Cmp(t, n, tc.want)
		})
	}
}

func TestResolve_Overrides(t *testing.T) {
	cfg, err := ParseConfig(nil)
	td.Require(t).CmpNoError(err)

	n, err := cfg.Resolve(Overrides{
		Network:  "localhost",
		Relayer:  "http://relayer",
		RPC:      "http://rpc",
		Contract: "0x00000000000000000000000000000000000000aa",
	})
	td.CmpNoError(t, err)
	td.Cmp(t, n, td.SStruct(Network{
		Name:           "localhost",
		ChainID:        31337,
		RelayerURL:     "http://relayer",
		RPCURL:         "http://rpc",
		MarketContract: "0x00000000000000000000000000000000000000aa",
	}, td.StructFields{
		"GatewayChainID":      td.Ignore(),
		"ACLContract":         td.Ignore(),
		"KMSVerifierContract": td.Ignore(),
		"InputVerifier":       td.Ignore(),
		"DecryptionVerifier":  td.Ignore(),
		"InputVerification":   td.Ignore(),
	}))
}

func TestResolve_UnknownNetwork(t *testing.T) {
	cfg, _ := ParseConfig(nil)
	_, err := cfg.Resolve(Overrides{Network: "mainnet"})
	td.CmpContains(t, err, `unknown network "mainnet"`)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	err := Network{MarketContract: "not-an-address"}.Validate()
	td.Require(t).CmpError(err)

	msg := err.Error()
	for _, want := range []string{
		"chain-id is required",
		"gateway-chain-id is required",
		"relayer-url is required",
		"rpc-url is required",
		"acl-contract is required",
		"kms-verifier-contract is required",
		"input-verifier-contract is required",
		"decryption-verifier-contract is required",
		"input-verification-contract is required",
		`market-contract "not-an-address" is not an address`,
	} {
		td.Cmp(t, strings.Contains(msg, want), true, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	td.CmpNoError(t, err)
	td.Cmp(t, cfg.Network, DefaultNetwork)
	td.Cmp(t, cfg.Networks, td.ContainsKey("localhost"))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	td.Require(t).CmpNoError(os.WriteFile(path, []byte("network: localhost\n"), 0o600))

	cfg, err := Load(path)
	td.CmpNoError(t, err)
	td.Cmp(t, cfg.Network, "localhost")
}

func TestBetBounds(t *testing.T) {
	td.Cmp(t, MinBetWei.String(), "1000000000000000")
	td.Cmp(t, MaxBetWei.String(), "10000000000000000000")
}
