package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripsync/internal/domain"
	"tripsync/internal/views"
)

func bookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "booking",
		Aliases: []string{"transport"},
		Short:   "Book transport",
	}
	cmd.AddCommand(bookingAddCmd(), bookingListCmd(), bookingUpdateCmd(), bookingDeleteCmd())
	return cmd
}

// booking add: reserve transport for a trip.
func bookingAddCmd() *cobra.Command {
	var (
		b         domain.Booking
		itinerary string
		mode      string
		date      string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Book transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b.ItineraryID = domain.ID(itinerary)
			b.Type = domain.TransportType(mode)
			b.Date = domain.Date(date)
			added, err := appCtx.Bookings.Add(b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booked %s %s for %s\n", added.Type, added.ID, money(added.Price))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&itinerary, "itinerary", "", "itinerary id")
	f.StringVar(&mode, "type", "", "jeep, bike, cab, car, bus or train")
	f.StringVar(&b.PickupLocation, "pickup", "", "pickup location")
	f.StringVar(&b.DropoffLocation, "dropoff", "", "drop-off location")
	f.StringVar(&date, "date", "", "travel date (YYYY-MM-DD)")
	f.IntVar(&b.Passengers, "passengers", 1, "number of passengers")
	f.Float64Var(&b.Price, "price", 0, "price (default: the mode's base price)")
	_ = cmd.MarkFlagRequired("itinerary")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// booking list: every booking, or those of one trip.
func bookingListCmd() *cobra.Command {
	var itinerary string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bookings := appCtx.Bookings.List()
			if itinerary != "" {
				bookings = views.BookingsFor(bookings, domain.ID(itinerary))
			}
			printBookings(cmd, bookings)
			return nil
		},
	}
	cmd.Flags().StringVar(&itinerary, "itinerary", "", "only this itinerary's bookings")
	return cmd
}

func printBookings(cmd *cobra.Command, bookings []domain.Booking) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bookings (%d)\n", len(bookings))
	if len(bookings) == 0 {
		return
	}
	tw := newTable(out, "ID", "ITINERARY", "TYPE", "ROUTE", "DATE", "PASSENGERS", "PRICE", "STATUS")
	for _, b := range bookings {
		row(tw, b.ID, b.ItineraryID, b.Type, b.PickupLocation+" -> "+b.DropoffLocation, b.Date, b.Passengers, money(b.Price), b.Status)
	}
	_ = tw.Flush()
}

// booking update <id> name=value...: overwrite fields.
func bookingUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field=value>...",
		Short: "Change fields of a booking",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch(args[1:])
			if err != nil {
				return err
			}
			ok, err := appCtx.Bookings.Update(domain.ID(args[0]), patch)
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), "updated", "booking", args[0], ok)
			return nil
		},
	}
}

// booking delete <id>
func bookingDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Cancel and delete a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := appCtx.Bookings.Delete(domain.ID(args[0]))
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), "deleted", "booking", args[0], ok)
			return nil
		},
	}
}
