package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"veilmarket/internal/config"
	"veilmarket/internal/domain"
	betsvc "veilmarket/internal/services/bet"
)

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List prediction events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := connect(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Market.GetEventCount(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tYES\tNO\tPOOL\tDESCRIPTION")
			now := time.Now()
			for id := uint64(0); id < n; id++ {
				ev, err := a.Market.GetPredictionEvent(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Status(now),
					betsvc.FormatAmount(ev.PriceYes), betsvc.FormatAmount(ev.PriceNo),
					betsvc.FormatAmount(ev.TotalPoolWei), ev.Description)
			}
			return tw.Flush()
		},
	}
}

func eventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := connect(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ev, err := a.Market.GetPredictionEvent(ctx, id)
			if err != nil {
				return err
			}
			printEvent(cmd.OutOrStdout(), ev)
			return nil
		},
	}
}

func printEvent(w io.Writer, ev domain.PredictionEvent) {
	fmt.Fprintf(w, "Event %d: %s\n", ev.ID, ev.Description)
	fmt.Fprintf(w, "  Status:     %s\n", ev.Status(time.Now()))
	fmt.Fprintf(w, "  Window:     %s to %s\n", ev.StartTime.Format(time.RFC3339), ev.EndTime.Format(time.RFC3339))
	fmt.Fprintf(w, "  Price YES:  %s ETH\n", betsvc.FormatAmount(ev.PriceYes))
	fmt.Fprintf(w, "  Price NO:   %s ETH\n", betsvc.FormatAmount(ev.PriceNo))
	fmt.Fprintf(w, "  Shares:     %s YES / %s NO\n", ev.TotalYesShares, ev.TotalNoShares)
	fmt.Fprintf(w, "  Pool:       %s ETH\n", betsvc.FormatAmount(ev.TotalPoolWei))
	if ev.IsResolved {
		fmt.Fprintf(w, "  Outcome:    %s\n", betsvc.FormatDirection(ev.Outcome))
	}
}

func createEventCmd() *cobra.Command {
	var description, start, end, priceYes, priceNo string
	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Create a prediction event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if description == "" || len(description) > config.MaxDescriptionLength {
				return fmt.Errorf("description must be 1 to %d characters", config.MaxDescriptionLength)
			}
			now := time.Now()
			st, err := parseTime(start, now)
			if err != nil {
				return err
			}
			et, err := parseTime(end, now)
			if err != nil {
				return err
			}
			if !et.After(st) {
				return fmt.Errorf("end must be after start")
			}
			py, err := parseEther(priceYes)
			if err != nil {
				return err
			}
			pn, err := parseEther(priceNo)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			hash, err := a.Market.CreatePredictionEvent(ctx, domain.NewEvent{
				Description: description,
				StartTime:   st,
				EndTime:     et,
				PriceYes:    py,
				PriceNo:     pn,
			})
			if err != nil {
				return err
			}
			n, err := a.Market.GetEventCount(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %d created (tx %s)\n", n-1, hash.Hex())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&description, "description", "", "event question")
	f.StringVar(&start, "start", "+0s", "start time (RFC 3339 or +duration)")
	f.StringVar(&end, "end", "+24h", "end time (RFC 3339 or +duration)")
	f.StringVar(&priceYes, "price-yes", "0.001", "price of one YES share in ETH")
	f.StringVar(&priceNo, "price-no", "0.001", "price of one NO share in ETH")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id> <yes|no>",
		Short: "Resolve an event with its outcome",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			outcome, err := parseDirection(args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := connect(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			hash, err := a.Market.ResolveEvent(ctx, id, outcome)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %d resolved %s (tx %s)\n", id, betsvc.FormatDirection(outcome), hash.Hex())
			return nil
		},
	}
}
