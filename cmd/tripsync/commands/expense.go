package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tripsync/internal/domain"
	"tripsync/internal/views"
)

func expenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record shared spending",
	}
	cmd.AddCommand(expenseAddCmd(), expenseListCmd(), expenseUpdateCmd(), expenseDeleteCmd())
	return cmd
}

// expense add: record an expense against a trip.
func expenseAddCmd() *cobra.Command {
	var (
		e         domain.Expense
		itinerary string
		category  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.ItineraryID = domain.ID(itinerary)
			e.Category = domain.Category(category)
			if _, ok := appCtx.Itineraries.Get(e.ItineraryID); !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no itinerary with id %s\n", itinerary)
			}
			added, err := appCtx.Expenses.Add(e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added expense %s\n", added.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&itinerary, "itinerary", "", "itinerary id")
	f.StringVar(&e.Description, "description", "", "what it was for")
	f.Float64Var(&e.Amount, "amount", 0, "amount paid")
	f.StringVar(&category, "category", "", "one of "+categoryList()+" (default misc)")
	f.StringVar(&e.PaidBy, "paid-by", "", "who paid")
	f.StringSliceVar(&e.SplitAmong, "split", nil, "who shares it (repeatable)")
	f.StringVar(&e.Currency, "currency-code", "", "currency the expense was paid in")
	_ = cmd.MarkFlagRequired("itinerary")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

// expense list: every expense, or those of one trip.
func expenseListCmd() *cobra.Command {
	var itinerary string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			expenses := appCtx.Expenses.List()
			if itinerary != "" {
				expenses = views.ExpensesFor(expenses, domain.ID(itinerary))
			}
			printExpenses(cmd, expenses)
			return nil
		},
	}
	cmd.Flags().StringVar(&itinerary, "itinerary", "", "only this itinerary's expenses")
	return cmd
}

func printExpenses(cmd *cobra.Command, expenses []domain.Expense) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Expenses (%d)\n", len(expenses))
	if len(expenses) == 0 {
		return
	}
	tw := newTable(out, "ID", "ITINERARY", "DESCRIPTION", "CATEGORY", "AMOUNT", "PAID BY", "SPLIT AMONG")
	for _, e := range expenses {
		row(tw, e.ID, e.ItineraryID, e.Description, e.Category, money(e.Amount), e.PaidBy, strings.Join(e.SplitAmong, ","))
	}
	_ = tw.Flush()
}

// expense update <id> name=value...: overwrite fields.
func expenseUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <field=value>...",
		Short: "Change fields of an expense",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch(args[1:])
			if err != nil {
				return err
			}
			ok, err := appCtx.Expenses.Update(domain.ID(args[0]), patch)
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), "updated", "expense", args[0], ok)
			return nil
		},
	}
}

// expense delete <id>
func expenseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := appCtx.Expenses.Delete(domain.ID(args[0]))
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), "deleted", "expense", args[0], ok)
			return nil
		},
	}
}
