// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"
	// defaultRequestTimeout is the default timeout for API requests.
	defaultRequestTimeout = 120 * time.Second
	// defaultPollInterval is the default interval for re-fetching the experiment list.
	defaultPollInterval = 5 * time.Second
)

// Config represents the top-level application configuration.
type Config struct {
	APIBaseURL          string `json:"apiBaseUrl"`
	Debug               bool   `json:"debug"`
	TimeoutSeconds      int    `json:"timeout,omitempty"`
	PollIntervalSeconds int    `json:"pollInterval,omitempty"`
	SessionFile         string `json:"sessionFile,omitempty"`
	ExportPath          string `json:"export,omitempty"`
	ExportMarkdownPath  string `json:"exportMarkdown,omitempty"`
	ExportYAMLPath      string `json:"exportYaml,omitempty"`
	LogFile             string `json:"logFile,omitempty"`
	ConfigPath          string `json:"-"`
}

// RequestTimeout returns the timeout duration for API requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the experiment-list polling interval.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "evaldeck.log"
}

// SessionFilePath returns the path of the persisted comparison session,
// defaulting to a file next to the config.
func (c Config) SessionFilePath() string {
	if path := strings.TrimSpace(c.SessionFile); path != "" {
		return path
	}
	if c.ConfigPath != "" {
		return filepath.Join(filepath.Dir(c.ConfigPath), "comparison_session.json")
	}
	return filepath.Join("config", "comparison_session.json")
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if strings.TrimSpace(config.APIBaseURL) == "" {
			return Config{}, errors.New("config must set apiBaseUrl")
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if errs, err := validateSchema(data); err != nil {
		return Config{}, fmt.Errorf("could not validate config %q: %w", path, err)
	} else if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid config %q: %s", path, strings.Join(errs, "; "))
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
