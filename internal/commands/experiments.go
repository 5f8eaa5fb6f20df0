// internal/commands/experiments.go
package evaldeck

import (
	"github.com/spf13/cobra"
)

// experimentsCmd represents the 'experiments' command group.
var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "Group commands for inspecting experiments",
	Long:  `The 'experiments' command groups subcommands that inspect experiments on the evaluation API.`,
}

func init() {
	rootCmd.AddCommand(experimentsCmd)
}
