package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tripsync/internal/settlement"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func money(amount float64) string {
	return settlement.Format(amount, cfg.Currency)
}

// result reports the outcome of an update or delete.
func result(w io.Writer, verb, kind, id string, matched bool) {
	if !matched {
		fmt.Fprintf(w, "no %s with id %s\n", kind, id)
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", verb, kind, id)
}
