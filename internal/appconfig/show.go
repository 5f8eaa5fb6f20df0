package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	if cfg == nil {
		fmt.Fprintf(out, "  API Base URL:   %s\n", fallback.APIBaseURL)
		fmt.Fprintf(out, "  Debug:          %v\n", fallback.Debug)
		fmt.Fprintf(out, "  Export:         %s\n", fallback.ExportPath)
		fmt.Fprintf(out, "  Export MD:      %s\n", fallback.ExportMarkdownPath)
		fmt.Fprintf(out, "  Export YAML:    %s\n", fallback.ExportYAMLPath)
		return
	}

	fmt.Fprintf(out, "  API Base URL:   %s\n", cfg.APIBaseURL)
	fmt.Fprintf(out, "  Debug:          %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Timeout:        %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Poll Interval:  %s\n", cfg.PollInterval())
	fmt.Fprintf(out, "  Session File:   %s\n", cfg.SessionFilePath())
	fmt.Fprintf(out, "  Log File:       %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Export:         %s\n", cfg.ExportPath)
	fmt.Fprintf(out, "  Export MD:      %s\n", cfg.ExportMarkdownPath)
	fmt.Fprintf(out, "  Export YAML:    %s\n", cfg.ExportYAMLPath)
}
