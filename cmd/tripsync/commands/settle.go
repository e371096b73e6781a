package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripsync/internal/domain"
	"tripsync/internal/settlement"
)

// settle <itinerary-id> [traveler...]: balance report for a trip.
func settleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <itinerary-id> [traveler...]",
		Short: "Show who owes and who is owed for a trip",
		Long: "Splits each expense equally among the people it was shared with and compares\n" +
			"everyone's share with the average. Without travelers, everyone named on an\n" +
			"expense takes part.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := appCtx.Trips.Settle(domain.ID(args[0]), args[1:])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total %s, average %s per person\n", money(res.TotalAmount), money(res.AveragePerPerson))

			tw := newTable(out, "PERSON", "SHARE")
			for _, name := range res.People {
				row(tw, name, money(res.Splits[name]))
			}
			_ = tw.Flush()

			if len(res.Settlements) == 0 {
				fmt.Fprintln(out, "everyone is even")
				return nil
			}
			fmt.Fprintln(out)
			for _, e := range res.Settlements {
				switch e.Direction {
				case settlement.Owes:
					fmt.Fprintf(out, "%s owes %s\n", e.Person, e.Rounded())
				case settlement.Owed:
					fmt.Fprintf(out, "%s is owed %s\n", e.Person, e.Rounded())
				}
			}
			return nil
		},
	}
}
