package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tripsync/internal/domain"
	"tripsync/internal/views"
)

func itineraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "itinerary",
		Aliases: []string{"trip"},
		Short:   "Plan trips",
	}
	cmd.AddCommand(itineraryAddCmd(), itineraryListCmd(), itineraryShowCmd(), itineraryUpdateCmd(), itineraryDeleteCmd())
	return cmd
}

// itinerary add: plan a new trip.
func itineraryAddCmd() *cobra.Command {
	var (
		it        domain.Itinerary
		start     string
		end       string
		interests []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Plan a new trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			it.StartDate = domain.Date(start)
			it.EndDate = domain.Date(end)
			it.Interests = interests
			it.CreatorEmail = domain.Username(cfg.User)
			added, err := appCtx.Itineraries.Add(it)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added itinerary %s\n", added.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&it.Destination, "destination", "", "where to")
	f.StringVar(&it.Source, "from", "", "where from")
	f.StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	f.Float64Var(&it.Budget, "budget", 0, "total budget")
	f.IntVar(&it.Travelers, "travelers", 1, "number of travelers")
	f.StringSliceVar(&interests, "interest", nil, "interests (repeatable)")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

// itinerary list: active trips split into yours and shared, or past trips.
func itineraryListCmd() *cobra.Command {
	var past bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := appCtx.Itineraries.List()
			today := domain.NewDate(time.Now())
			out := cmd.OutOrStdout()
			if past {
				printItineraries(cmd, "Past trips", views.Past(all, today))
				return nil
			}
			owned, others := views.Partition(all, today, domain.Username(cfg.User))
			printItineraries(cmd, "Your trips", owned)
			fmt.Fprintln(out)
			printItineraries(cmd, "Shared trips", others)
			return nil
		},
	}
	cmd.Flags().BoolVar(&past, "past", false, "list trips that have ended")
	return cmd
}

func printItineraries(cmd *cobra.Command, title string, its []domain.Itinerary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%d)\n", title, len(its))
	if len(its) == 0 {
		return
	}
	tw := newTable(out, "ID", "DESTINATION", "FROM", "DATES", "TRAVELERS", "BUDGET")
	for _, it := range its {
		row(tw, it.ID, it.Destination, it.Source, fmt.Sprintf("%s..%s", it.StartDate, it.EndDate), it.Travelers, money(it.Budget))
	}
	_ = tw.Flush()
}

// itinerary show <id>: the trip with its expenses, bookings and budget.
func itineraryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a trip with its expenses and bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, ok := appCtx.Trips.Overview(domain.ID(args[0]))
			if !ok {
				return fmt.Errorf("no itinerary with id %s", args[0])
			}
			out := cmd.OutOrStdout()
			it := ov.Itinerary
			fmt.Fprintf(out, "%s (%s)\n", it.Destination, it.ID)
			if it.Source != "" {
				fmt.Fprintf(out, "  from:      %s\n", it.Source)
			}
			fmt.Fprintf(out, "  dates:     %s..%s\n", it.StartDate, it.EndDate)
			fmt.Fprintf(out, "  travelers: %d\n", it.Travelers)
			if len(it.Interests) > 0 {
				fmt.Fprintf(out, "  interests: %s\n", strings.Join(it.Interests, ", "))
			}
			fmt.Fprintf(out, "  budget:    %s spent of %s, %s left\n",
				money(ov.Budget.Spent), money(ov.Budget.Budget), money(ov.Budget.Remaining))

			if len(ov.Categories) > 0 {
				fmt.Fprintln(out)
				tw := newTable(out, "CATEGORY", "COUNT", "TOTAL")
				for _, c := range ov.Categories {
					row(tw, c.Category, c.Count, money(c.Total.InexactFloat64()))
				}
				_ = tw.Flush()
			}
			fmt.Fprintln(out)
			printExpenses(cmd, ov.Expenses)
			fmt.Fprintln(out)
			printBookings(cmd, ov.Bookings)
			return nil
		},
	}
}

// itinerary update <id> name=value...: overwrite fields.
func itineraryUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field=value>...",
		Short: "Change fields of a trip",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch(args[1:])
			if err != nil {
				return err
			}
			ok, err := appCtx.Itineraries.Update(domain.ID(args[0]), patch)
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), "updated", "itinerary", args[0], ok)
			return nil
		},
	}
}

// itinerary delete <id>: remove a trip, optionally with what refers to it.
func itineraryDeleteCmd() *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			del, err := appCtx.Trips.DeleteItinerary(domain.ID(args[0]), cascade)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result(out, "deleted", "itinerary", args[0], del.Itinerary)
			if cascade {
				fmt.Fprintf(out, "deleted %d expenses and %d bookings\n", del.Expenses, del.Bookings)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete the trip's expenses and bookings")
	return cmd
}
