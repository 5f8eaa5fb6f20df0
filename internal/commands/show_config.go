// internal/commands/show_config.go
package evaldeck

import (
	"github.com/evaldeck/evaldeck/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the 'config' command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for the application configuration",
}

// configShowCmd implements 'config show', which displays the current
// configuration settings after flag and file merging.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Debug:              viper.GetBool("debug"),
			ExportPath:         viper.GetString("export"),
			ExportMarkdownPath: viper.GetString("exportMarkdown"),
			ExportYAMLPath:     viper.GetString("exportYaml"),
		}
		file := ""
		if cfg := GetConfig(); cfg != nil {
			file = cfg.ConfigPath
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), file, GetConfig(), fallback)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
