package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"veilmarket/internal/config"
)

func initCmd() *cobra.Command {
	var importKey string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate or import a wallet key and store it encrypted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			var (
				addr common.Address
				err  error
			)
			if importKey != "" {
				addr, err = wire.Identity.ImportWallet(passphrase, importKey)
			} else {
				addr, err = wire.Identity.GenerateWallet(passphrase)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wallet stored.\nAddress: %s\n", addr.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&importKey, "import", "", "hex private key to import instead of generating one")
	return cmd
}

func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address",
		Long:  "Prints the address stored beside the encrypted key. With -p the key is unlocked and checked too.",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := wire.Wallets.StoredAddress()
			if err != nil {
				return err
			}
			if passphrase != "" {
				w, err := wire.Unlock(passphrase)
				if err != nil {
					return err
				}
				addr = w.Address()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Address: %s\n", addr.Hex())
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if overrides.Network != "" {
				cfg.Network = overrides.Network
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
