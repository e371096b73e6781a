package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// orphans: expenses and bookings whose trip was deleted.
func orphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List expenses and bookings whose itinerary no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := appCtx.Trips.Orphans()
			printExpenses(cmd, o.Expenses)
			fmt.Fprintln(cmd.OutOrStdout())
			printBookings(cmd, o.Bookings)
			return nil
		},
	}
}
