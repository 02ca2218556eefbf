package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError reports a configuration value that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks that the configuration is complete enough to start
// the gateway.
func Validate(cfg Config) error {
	if cfg.Server.Listen == "" {
		return &ValidationError{Field: "server.listen", Reason: "must not be empty"}
	}

	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "server.baseURL", Reason: "must be an absolute URL"}
	}

	switch strings.ToLower(cfg.Server.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "server.logLevel", Reason: "must be one of debug, info, warn, error"}
	}

	if cfg.GitHub.ClientID == "" {
		return &ValidationError{Field: "github.clientID", Reason: "must be set (or " + EnvGitHubClientID + ")"}
	}
	if cfg.GitHub.ClientSecret == "" {
		return &ValidationError{Field: "github.clientSecret", Reason: "must be set (or " + EnvGitHubClientSecret + ")"}
	}
	if len(cfg.GitHub.AllowedUsers) == 0 {
		return &ValidationError{Field: "github.allowedUsers", Reason: "allow-list must not be empty; the gateway denies by default"}
	}
	for _, u := range cfg.GitHub.AllowedUsers {
		if strings.TrimSpace(u) == "" {
			return &ValidationError{Field: "github.allowedUsers", Reason: "entries must not be blank"}
		}
	}

	if cfg.Backend.Address == "" {
		return &ValidationError{Field: "backend.address", Reason: "must not be empty"}
	}
	if cfg.Backend.SharedSecret == "" {
		return &ValidationError{Field: "backend.sharedSecret", Reason: "must be set (or " + EnvBackendSecret + ")"}
	}

	for field, ttl := range map[string]int64{
		"tokens.accessTTL":  int64(cfg.Tokens.AccessTTL),
		"tokens.refreshTTL": int64(cfg.Tokens.RefreshTTL),
		"tokens.codeTTL":    int64(cfg.Tokens.CodeTTL),
		"tokens.sessionTTL": int64(cfg.Tokens.SessionTTL),
	} {
		if ttl < 0 {
			return &ValidationError{Field: field, Reason: "must not be negative"}
		}
	}
	return nil
}
