// internal/commands/session.go
package evaldeck

import (
	"fmt"

	"github.com/evaldeck/evaldeck/internal/session"
	"github.com/spf13/cobra"
)

// sessionCmd represents the 'session' command group.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Group commands for the persisted comparison session",
	Long:  `The 'session' command groups subcommands that manage the comparison session persisted between runs.`,
}

// sessionClearCmd implements 'session clear', which removes the persisted
// comparison so the next run starts from an empty dashboard.
var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the persisted comparison session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := session.NewStore(GetConfig().SessionFilePath())
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared comparison session at %s\n", store.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
