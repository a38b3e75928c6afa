package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func betCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bet <event-id> <shares> <yes|no> <stake-eth>",
		Short: "Place an encrypted bet",
		Long: "Encrypts the share count and direction for the market contract and " +
			"submits them with the ETH stake. Only you can reveal them later.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			shares, err := parseShares(args[1])
			if err != nil {
				return err
			}
			isYes, err := parseDirection(args[2])
			if err != nil {
				return err
			}
			stake, err := parseEther(args[3])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			hash, err := a.Bets.PlaceBet(ctx, id, shares, isYes, stake)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bet placed on event %d (tx %s)\n", id, hash.Hex())
			fmt.Fprintln(cmd.OutOrStdout(), "Run `veilmarket last-error` to confirm the contract accepted it.")
			return nil
		},
	}
}

func revealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reveal [event-id...]",
		Short: "Decrypt your bets (default: every bet placed from this client)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseEventIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(ids) == 0 {
				placed, err := a.Bets.PlacedBets()
				if err != nil {
					return err
				}
				for _, p := range placed {
					ids = append(ids, p.EventID)
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bets recorded. Pass event ids explicitly.")
				return nil
			}

			results, err := a.Bets.RevealBets(ctx, ids)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EVENT\tAMOUNT\tSHARES\tSIDE\tNOTE")
			for _, r := range results {
				amount, shares, side := r.Columns()
				note := ""
				if r.Err != nil {
					note = r.Err.Error()
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.EventID, amount, shares, side, note)
			}
			return tw.Flush()
		},
	}
}

func betsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bets",
		Short: "List bets placed from this client",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			placed, err := a.Bets.PlacedBets()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EVENT\tPLACED\tTX")
			for _, p := range placed {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.EventID, time.Unix(p.PlacedAt, 0).Format(time.RFC3339), p.TxHash)
			}
			return tw.Flush()
		},
	}
}

func lastErrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last-error",
		Short: "Decrypt the result code of your last contract call",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.Bets.LastError(ctx)
			if err != nil {
				return err
			}
			at := "never"
			if rep.Timestamp.Unix() > 0 {
				at = rep.Timestamp.Format(time.RFC3339)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Code %d: %s (at %s)\n", rep.Code, rep.Message, at)
			return nil
		},
	}
}
