// internal/commands/root.go
package evaldeck

import (
	"fmt"
	"os"
	"strconv"

	"github.com/evaldeck/evaldeck/internal/appconfig"
	"github.com/evaldeck/evaldeck/internal/logging"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "evaldeck",
	Short: "evaldeck — terminal-first admin console for evaluation experiments",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(cfgFile)
		if err != nil {
			return err
		}

		// Flags the user did not set fall back to the config file value so
		// both pflags and viper reflect the same, final value. Cobra merges
		// persistent flags into cmd.Flags() lazily, so set them on the root
		// flag set where they are registered.
		flags := cmd.Root().PersistentFlags()
		if !flags.Changed("debug") {
			if err := flags.Set("debug", strconv.FormatBool(cfg.Debug)); err != nil {
				return fmt.Errorf("failed to apply config value for --debug: %w", err)
			}
		}
		fileValues := map[string]string{
			"export":         cfg.ExportPath,
			"exportMarkdown": cfg.ExportMarkdownPath,
			"exportYaml":     cfg.ExportYAMLPath,
			"logFile":        cfg.LogFile,
			"sessionFile":    cfg.SessionFile,
		}
		for name, val := range fileValues {
			if !flags.Changed(name) {
				if err := flags.Set(name, val); err != nil {
					return fmt.Errorf("failed to apply config value for --%s: %w", name, err)
				}
			}
		}

		cfg.Debug = viper.GetBool("debug")
		cfg.ExportPath = viper.GetString("export")
		cfg.ExportMarkdownPath = viper.GetString("exportMarkdown")
		cfg.ExportYAMLPath = viper.GetString("exportYaml")
		cfg.LogFile = viper.GetString("logFile")
		cfg.SessionFile = viper.GetString("sessionFile")
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if currentConfig.Debug {
			pp.Println(currentConfig)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("export", "", "write comparison reports to this JSON file")
	rootCmd.PersistentFlags().String("exportMarkdown", "", "write comparison reports to this Markdown file")
	rootCmd.PersistentFlags().String("exportYaml", "", "write comparison reports to this YAML file")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("sessionFile", "", "path to the persisted comparison session")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("export", rootCmd.PersistentFlags().Lookup("export"))
	_ = viper.BindPFlag("exportMarkdown", rootCmd.PersistentFlags().Lookup("exportMarkdown"))
	_ = viper.BindPFlag("exportYaml", rootCmd.PersistentFlags().Lookup("exportYaml"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("sessionFile", rootCmd.PersistentFlags().Lookup("sessionFile"))
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
