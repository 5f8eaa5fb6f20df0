// internal/experiments/list.go
// Package experiments renders experiment listings for the terminal.
package experiments

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/fatih/color"
)

var (
	completedStatus = color.New(color.FgGreen).SprintFunc()
	activeStatus    = color.New(color.FgYellow).SprintFunc()
	failedStatus    = color.New(color.FgRed).SprintFunc()
)

// List prints every experiment in a two-column table, newest id first,
// with the status colored by lifecycle.
func List(out io.Writer, experiments []evalapi.Experiment) {
	if len(experiments) == 0 {
		fmt.Fprintln(out, "No experiments found.")
		return
	}

	sorted := make([]evalapi.Experiment, len(experiments))
	copy(sorted, experiments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS")
	for _, exp := range sorted {
		fmt.Fprintf(w, "%d\t%s\t%s\n", exp.ID, exp.Name, renderStatus(exp))
	}
	w.Flush()
}

// renderStatus colors a status by lifecycle: green for completed, yellow
// for anything still active, red otherwise.
func renderStatus(exp evalapi.Experiment) string {
	switch {
	case exp.Status == "completed":
		return completedStatus(exp.Status)
	case exp.Active():
		return activeStatus(exp.Status)
	default:
		return failedStatus(exp.Status)
	}
}
