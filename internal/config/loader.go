package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mcpgate/pkg/logging"
)

// Environment variables overriding file-sourced secrets.
const (
	EnvGitHubClientID     = "MCPGATE_GITHUB_CLIENT_ID"
	EnvGitHubClientSecret = "MCPGATE_GITHUB_CLIENT_SECRET"
	EnvBackendSecret      = "MCPGATE_BACKEND_SECRET"
)

// LoadConfig loads configuration from the given YAML file, layered over
// the defaults and under the secret environment variables. A missing
// file is not an error; missing required values are caught by Validate.
func LoadConfig(configFile string) (Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("Config", "No config file at %s, using defaults and environment", configFile)
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", configFile, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", configFile, err)
		}
		logging.Info("Config", "Loaded configuration from %s", configFile)
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://" + cfg.Server.Listen
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvGitHubClientID); v != "" {
		cfg.GitHub.ClientID = v
	}
	if v := os.Getenv(EnvGitHubClientSecret); v != "" {
		cfg.GitHub.ClientSecret = v
	}
	if v := os.Getenv(EnvBackendSecret); v != "" {
		cfg.Backend.SharedSecret = v
	}
}
