// Package config loads client configuration from an optional config file,
// TASKDECK_* environment variables, and built-in defaults, in that order of
// increasing precedence for env over file.
//
// The config file lives at ~/.taskdeck/config.yaml by default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultBaseURL is used when no API base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// Config holds everything the client needs to reach the remote service and
// persist local state.
type Config struct {
	// BaseURL is the root of the remote API, without a trailing slash.
	BaseURL string
	// StatePath is the SQLite file holding durable session state.
	StatePath string
	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string
}

// DefaultDir returns the taskdeck config/state directory (~/.taskdeck).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".taskdeck"), nil
}

// Load reads configuration from the given file, or from the default
// locations when path is empty. A missing config file is not an error; the
// defaults and environment cover every setting.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("log.level", "warn")

	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	v.SetDefault("state.path", filepath.Join(dir, "state.db"))

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TASKDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		BaseURL:   strings.TrimRight(v.GetString("api.base_url"), "/"),
		StatePath: v.GetString("state.path"),
		LogLevel:  v.GetString("log.level"),
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url must not be empty")
	}

	return cfg, nil
}
