package config

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultNetwork is selected when neither file nor flag names one.
	DefaultNetwork = "sepolia"

	// DefaultFileName is the config file looked up in the home directory.
	DefaultFileName = "config.yaml"

	// MaxDescriptionLength bounds event descriptions accepted by the CLI.
	MaxDescriptionLength = 200
)

var (
	// MinBetWei is 0.001 ETH.
	MinBetWei = new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)
	// MaxBetWei is 10 ETH.
	MaxBetWei = new(big.Int).Mul(big.NewInt(10), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
)

// Network is everything the client needs to talk to one deployment.
type Network struct {
	Name                string `yaml:"-"`
	ChainID             uint64 `yaml:"chain-id"`
	GatewayChainID      uint64 `yaml:"gateway-chain-id"`
	RelayerURL          string `yaml:"relayer-url"`
	RPCURL              string `yaml:"rpc-url"`
	ACLContract         string `yaml:"acl-contract"`
	KMSVerifierContract string `yaml:"kms-verifier-contract"`
	InputVerifier       string `yaml:"input-verifier-contract"`
	DecryptionVerifier  string `yaml:"decryption-verifier-contract"`
	InputVerification   string `yaml:"input-verification-contract"`
	MarketContract      string `yaml:"market-contract"`
}

// MarketAddress returns the prediction market contract address.
func (n Network) MarketAddress() common.Address { return common.HexToAddress(n.MarketContract) }

// DecryptionVerifierAddress returns the typed-data verifying contract.
func (n Network) DecryptionVerifierAddress() common.Address {
	return common.HexToAddress(n.DecryptionVerifier)
}

// Config is the parsed config file.
type Config struct {
	Network  string             `yaml:"network"`
	Networks map[string]Network `yaml:"networks"`
}

// Overrides are the command-line values applied on top of the file.
type Overrides struct {
	Network  string
	Relayer  string
	RPC      string
	Contract string
}

// Builtin returns the networks compiled into the client.
func Builtin() map[string]Network {
	return map[string]Network{
		"sepolia": {
			Name:                "sepolia",
			ChainID:             11155111,
			GatewayChainID:      55815,
			RelayerURL:          "https://relayer.testnet.zama.cloud",
			RPCURL:              "https://sepolia.infura.io/v3/YOUR_INFURA_KEY",
			ACLContract:         "0x687820221192C5B662b25367F70076A37bc79b6c",
			KMSVerifierContract: "0x1364cBBf2cDF5032C47d8226a6f6FBD2AFCDacAC",
			InputVerifier:       "0xbc91f3daD1A5F19F8390c400196e58073B6a0BC4",
			DecryptionVerifier:  "0xb6E160B1ff80D67Bfe90A85eE06Ce0A2613607D1",
			InputVerification:   "0x7048C39f048125eDa9d678AEbaDfB22F7900a29F",
			MarketContract:      "0x042155e8Ee5688adEBe209E3a04668b7fB10153e",
		},
		"localhost": {
			Name:                "localhost",
			ChainID:             31337,
			GatewayChainID:      55815,
			RelayerURL:          "http://127.0.0.1:8090",
			RPCURL:              "http://localhost:8545",
			ACLContract:         "0x687820221192C5B662b25367F70076A37bc79b6c",
			KMSVerifierContract: "0x1364cBBf2cDF5032C47d8226a6f6FBD2AFCDacAC",
			InputVerifier:       "0xbc91f3daD1A5F19F8390c400196e58073B6a0BC4",
			DecryptionVerifier:  "0xb6E160B1ff80D67Bfe90A85eE06Ce0A2613607D1",
			InputVerification:   "0x7048C39f048125eDa9d678AEbaDfB22F7900a29F",
			MarketContract:      "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		},
	}
}

// Dump generates a YAML string of the Config object
func (c *Config) Dump() (string, error) {
	d, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate YAML dump of config")
	}
	return string(d), nil
}

// ParseConfig reads a config file. Networks named in the file are merged
// field by field over the built-in network of the same name.
func ParseConfig(data []byte) (Config, error) {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	merged := Config{Network: file.Network, Networks: Builtin()}
	for name, n := range file.Networks {
		merged.Networks[name] = merge(merged.Networks[name], n)
	}
	if merged.Network == "" {
		merged.Network = DefaultNetwork
	}
	return merged, nil
}

// Load reads path if it exists. A missing file yields the built-in config.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{Network: DefaultNetwork, Networks: Builtin()}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{Network: DefaultNetwork, Networks: Builtin()}, nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseConfig(data)
}

// Resolve picks the network, applies overrides and validates the result.
func (c Config) Resolve(o Overrides) (Network, error) {
	name := c.Network
	if o.Network != "" {
		name = o.Network
	}
	n, ok := c.Networks[name]
	if !ok {
		return Network{}, errors.Errorf("unknown network %q (known: %s)", name, strings.Join(c.names(), ", "))
	}
	n.Name = name
	if o.Relayer != "" {
		n.RelayerURL = o.Relayer
	}
	if o.RPC != "" {
		n.RPCURL = o.RPC
	}
	if o.Contract != "" {
		n.MarketContract = o.Contract
	}
	if err := n.Validate(); err != nil {
		return Network{}, err
	}
	return n, nil
}

// Validate reports every missing or malformed field at once.
func (n Network) Validate() error {
	var result *multierror.Error

	if n.ChainID == 0 {
		result = multierror.Append(result, fmt.Errorf("chain-id is required"))
	}
	if n.GatewayChainID == 0 {
		result = multierror.Append(result, fmt.Errorf("gateway-chain-id is required"))
	}
	if n.RelayerURL == "" {
		result = multierror.Append(result, fmt.Errorf("relayer-url is required"))
	}
	if n.RPCURL == "" {
		result = multierror.Append(result, fmt.Errorf("rpc-url is required"))
	}
	for _, f := range []struct{ name, value string }{
		{"acl-contract", n.ACLContract},
		{"kms-verifier-contract", n.KMSVerifierContract},
		{"input-verifier-contract", n.InputVerifier},
		{"decryption-verifier-contract", n.DecryptionVerifier},
		{"input-verification-contract", n.InputVerification},
		{"market-contract", n.MarketContract},
	} {
		switch {
		case f.value == "":
			result = multierror.Append(result, fmt.Errorf("%s is required", f.name))
		case !common.IsHexAddress(f.value):
			result = multierror.Append(result, fmt.Errorf("%s %q is not an address", f.name, f.value))
		}
	}

	return result.ErrorOrNil()
}

func (c Config) names() []string {
	out := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func merge(base, over Network) Network {
	if over.ChainID != 0 {
		base.ChainID = over.ChainID
	}
	if over.GatewayChainID != 0 {
		base.GatewayChainID = over.GatewayChainID
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.RelayerURL, over.RelayerURL)
	set(&base.RPCURL, over.RPCURL)
	set(&base.ACLContract, over.ACLContract)
	set(&base.KMSVerifierContract, over.KMSVerifierContract)
	set(&base.InputVerifier, over.InputVerifier)
	set(&base.DecryptionVerifier, over.DecryptionVerifier)
	set(&base.InputVerification, over.InputVerification)
	set(&base.MarketContract, over.MarketContract)
	return base
}
