// internal/commands/compare_export.go
package evaldeck

import (
	"context"
	"errors"
	"fmt"

	"github.com/evaldeck/evaldeck/internal/comparison"
	"github.com/evaldeck/evaldeck/internal/dashboard"
	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/report"
	"github.com/evaldeck/evaldeck/internal/session"
	"github.com/spf13/cobra"
)

// compareExportCmd implements 'compare export', which re-hydrates the
// persisted comparison and writes it to the configured report files.
var compareExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the persisted comparison to report files",
	Long:  `The 'export' subcommand re-fetches the persisted comparison and writes it as JSON, Markdown, or YAML, depending on which export paths are set via flags or the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.ExportPath == "" && cfg.ExportMarkdownPath == "" && cfg.ExportYAMLPath == "" {
			return errors.New("no export path configured: set --export, --exportMarkdown, or --exportYaml")
		}

		store := session.NewStore(cfg.SessionFilePath())
		baseline, candidates, ok := store.Load()
		if !ok {
			return errors.New("no comparison session found: run 'evaldeck compare' first")
		}

		client := evalapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout())
		fetcher := comparison.NewFetcher(client)
		set := comparison.Set{Baseline: baseline, Candidates: candidates}
		hydration, err := fetcher.Hydrate(context.Background(), set)
		if err != nil {
			return fmt.Errorf("could not fetch comparison data: %w", err)
		}

		board := dashboard.New(client, fetcher, comparison.NewSelector(fetcher, store), store)
		rep := report.Build(hydration, board)

		if cfg.ExportPath != "" {
			if err := report.WriteJSON(cfg.ExportPath, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.ExportPath)
		}
		if cfg.ExportMarkdownPath != "" {
			if err := report.WriteMarkdown(cfg.ExportMarkdownPath, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.ExportMarkdownPath)
		}
		if cfg.ExportYAMLPath != "" {
			if err := report.WriteYAML(cfg.ExportYAMLPath, rep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfg.ExportYAMLPath)
		}
		return nil
	},
}

func init() {
	compareCmd.AddCommand(compareExportCmd)
}
