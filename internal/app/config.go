package app

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"veilmarket/internal/config"
	"veilmarket/internal/market"
	"veilmarket/internal/wallet"
)

// Dialer connects to a chain RPC endpoint.
type Dialer func(ctx context.Context, rawurl string) (market.Backend, error)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string         // config directory, e.g. $HOME/.veilmarket
	Network  config.Network // resolved network
	HTTP     *http.Client   // optional; defaults to http.DefaultClient
	Log      *logrus.Entry  // optional; defaults to the standard logger
	Dial     Dialer         // optional; defaults to an ethclient dial
	Approver wallet.Approver
}
