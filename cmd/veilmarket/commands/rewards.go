package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	betsvc "veilmarket/internal/services/bet"
)

func rewardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewards [event-id...]",
		Short: "Show pending rewards (default: every event)",
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
				n, err := a.Market.GetEventCount(ctx)
				if err != nil {
					return err
				}
				for id := uint64(0); id < n; id++ {
					ids = append(ids, id)
				}
			}
			rs, err := a.Rewards.RewardsFor(ctx, ids)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EVENT\tPENDING\tCLAIMED")
			for _, r := range rs {
				fmt.Fprintf(tw, "%d\t%s ETH\t%t\n", r.EventID, betsvc.FormatAmount(r.PendingAmount), r.Claimed)
			}
			return tw.Flush()
		},
	}
}

func claimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <event-id>",
		Short: "Claim the reward on a resolved event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			hash, err := a.Rewards.Claim(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reward claimed on event %d (tx %s)\n", id, hash.Hex())
			return nil
		},
	}
}
