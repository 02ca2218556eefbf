package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := GetDefaultConfig()
	cfg.Server.BaseURL = "https://gw.example.com"
	cfg.GitHub.ClientID = "iv1.abc"
	cfg.GitHub.ClientSecret = "secret"
	cfg.GitHub.AllowedUsers = []string{"alice"}
	cfg.Backend.Address = "127.0.0.1:7007"
	cfg.Backend.SharedSecret = "backend-secret"
	return cfg
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_RejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, "server.listen"},
		{"relative base URL", func(c *Config) { c.Server.BaseURL = "/just/a/path" }, "server.baseURL"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }, "server.logLevel"},
		{"no client id", func(c *Config) { c.GitHub.ClientID = "" }, "github.clientID"},
		{"no client secret", func(c *Config) { c.GitHub.ClientSecret = "" }, "github.clientSecret"},
		{"empty allow-list", func(c *Config) { c.GitHub.AllowedUsers = nil }, "github.allowedUsers"},
		{"blank allow-list entry", func(c *Config) { c.GitHub.AllowedUsers = []string{"alice", "  "} }, "github.allowedUsers"},
		{"no backend address", func(c *Config) { c.Backend.Address = "" }, "backend.address"},
		{"no backend secret", func(c *Config) { c.Backend.SharedSecret = "" }, "backend.sharedSecret"},
		{"negative ttl", func(c *Config) { c.Tokens.AccessTTL = -1 }, "tokens.accessTTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
