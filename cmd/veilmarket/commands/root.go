package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"veilmarket/internal/app"
	"veilmarket/internal/config"
	"veilmarket/internal/domain"
	"veilmarket/internal/wallet"
)

var (
	home       string
	configPath string
	passphrase string
	overrides  config.Overrides
	verbose    bool
	logJSON    bool
	assumeYes  bool

	log  *logrus.Entry
	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "veilmarket",
		Short:         "Confidential prediction market client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = newLogger()
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".veilmarket")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			if configPath == "" {
				configPath = filepath.Join(home, config.DefaultFileName)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			net, err := cfg.Resolve(overrides)
			if err != nil {
				return err
			}

			approver := wallet.PromptApprover(os.Stdin, os.Stderr)
			if assumeYes {
				approver = wallet.AutoApprove
			}
			wire, err = app.NewWire(app.Config{
				Home:     home,
				Network:  net,
				Log:      log,
				Approver: approver,
			})
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "data dir (default ~/.veilmarket)")
	pf.StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the wallet key")
	pf.StringVar(&overrides.Network, "network", "", "network name (default from config, else sepolia)")
	pf.StringVar(&overrides.Relayer, "relayer", "", "relayer base URL override")
	pf.StringVar(&overrides.RPC, "rpc", "", "chain RPC URL override")
	pf.StringVar(&overrides.Contract, "contract", "", "market contract address override")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "approve every signing request without asking")

	root.AddCommand(
		initCmd(), addressCmd(), configCmd(),
		eventsCmd(), eventCmd(), createEventCmd(),
		betCmd(), revealCmd(), betsCmd(), resolveCmd(),
		rewardsCmd(), claimCmd(), lastErrorCmd(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := root.ExecuteContext(ctx)
	if err != nil {
		if log == nil {
			log = newLogger()
		}
		log.WithError(err).Error("command failed")
	}
	return err
}

func newLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	if logJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return logrus.NewEntry(l)
}

// connect opens the chain. With withWallet the stored key is unlocked and
// used for signing; otherwise the app is read-only.
func connect(ctx context.Context, withWallet bool) (*app.App, error) {
	var signer domain.Signer
	if withWallet {
		if passphrase == "" {
			return nil, fmt.Errorf("passphrase required (-p)")
		}
		w, err := wire.Unlock(passphrase)
		if err != nil {
			return nil, err
		}
		signer = w
	}
	return wire.Connect(ctx, signer)
}
