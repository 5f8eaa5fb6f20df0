// internal/commands/experiments_list.go
package evaldeck

import (
	"context"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/experiments"
	"github.com/spf13/cobra"
)

// experimentsListCmd implements 'experiments list', which prints every
// experiment known to the API with its status colored by lifecycle.
var experimentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments with their status",
	Long:  `The 'list' subcommand fetches every experiment from the configured evaluation API and prints an id, name, and status column for each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		client := evalapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout())
		list, err := client.ListExperiments(context.Background())
		if err != nil {
			return err
		}
		experiments.List(cmd.OutOrStdout(), list)
		return nil
	},
}

func init() {
	experimentsCmd.AddCommand(experimentsListCmd)
}
