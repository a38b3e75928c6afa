package main

import (
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"veilmarket/internal/config"
	"veilmarket/internal/relayer/devrelayer"
)

func main() {
	addr := pflag.String("addr", "127.0.0.1:8090", "listen address")
	network := pflag.String("network", "localhost", "network whose chain ids to serve")
	configPath := pflag.String("config", "", "config file (default built-in networks)")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	logJSON := pflag.Bool("log-json", false, "log as JSON")
	pflag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	entry := logrus.NewEntry(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		entry.WithError(err).Fatal("load config")
	}
	net, err := cfg.Resolve(config.Overrides{Network: *network})
	if err != nil {
		entry.WithError(err).Fatal("resolve network")
	}

	srv, err := devrelayer.New(devrelayer.Config{
		ChainID:            net.ChainID,
		GatewayChainID:     net.GatewayChainID,
		DecryptionVerifier: net.DecryptionVerifierAddress(),
		Log:                entry,
	})
	if err != nil {
		entry.WithError(err).Fatal("start relayer")
	}

	entry.WithFields(logrus.Fields{
		"addr":        *addr,
		"network":     net.Name,
		"chain_id":    net.ChainID,
		"key_id":      srv.NetworkKey().PublicKeyID,
		"coprocessor": srv.CoprocessorAddress().Hex(),
	}).Info("relayer listening")

	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := hs.ListenAndServe(); err != nil {
		entry.WithError(err).Error("relayer stopped")
		os.Exit(1)
	}
}
