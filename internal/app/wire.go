package app

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/domain"
	"veilmarket/internal/market"
	"veilmarket/internal/relayer"
	"veilmarket/internal/services/identity"
	"veilmarket/internal/store"
	"veilmarket/internal/wallet"
)

// Wire bundles the offline stores and clients for the CLI. Nothing here
// touches the network until Connect.
type Wire struct {
	cfg Config

	Wallets  *store.WalletFileStore
	Bets     domain.BetStore
	Identity *identity.Service
	Relayer  *relayer.HTTP
	HTTP     *http.Client
	Log      *logrus.Entry
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if err := cfg.Network.Validate(); err != nil {
		return nil, err
	}

	// File-based stores
	walletStore := store.NewWalletFileStore(cfg.Home)
	betStore := store.NewBetFileStore(cfg.Home)

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.Dial == nil {
		cfg.Dial = dialEthclient
	}
	if cfg.Approver == nil {
		cfg.Approver = wallet.AutoApprove
	}

	return &Wire{
		cfg:      cfg,
		Wallets:  walletStore,
		Bets:     betStore,
		Identity: identity.New(walletStore),
		Relayer:  relayer.NewHTTP(cfg.Network.RelayerURL, httpClient, log),
		HTTP:     httpClient,
		Log:      log,
	}, nil
}

// Unlock decrypts the stored key into a signing wallet that asks the
// configured approver before every signature.
func (w *Wire) Unlock(passphrase string) (*wallet.Local, error) {
	key, err := w.Identity.UnlockWallet(passphrase)
	if err != nil {
		return nil, err
	}
	return wallet.FromKey(key, wallet.WithApprover(w.cfg.Approver))
}

// Connect dials the chain and builds the online graph. signer may be nil
// for read-only use.
func (w *Wire) Connect(ctx context.Context, signer domain.Signer) (*App, error) {
	backend, err := w.cfg.Dial(ctx, w.cfg.Network.RPCURL)
	if err != nil {
		return nil, err
	}
	return New(w, backend, signer), nil
}

func dialEthclient(ctx context.Context, rawurl string) (market.Backend, error) {
	return ethclient.DialContext(ctx, rawurl)
}
