// internal/commands/compare.go
package evaldeck

import (
	"context"

	"github.com/evaldeck/evaldeck/cli"
	"github.com/spf13/cobra"
)

// startDashboard is a function alias to cli.StartDashboard for starting the
// interactive comparison interface.
var startDashboard = cli.StartDashboard

// compareCmd represents the 'compare' command, which starts the interactive
// comparison picker and dashboard.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Pick experiments and open the comparison dashboard",
	Long:  `The 'compare' command opens the interactive picker for staging experiments, choosing a baseline, and viewing the committed comparison. A persisted session is restored first.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		startDashboard(ctx, GetConfig(), cancel)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
