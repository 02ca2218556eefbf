package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  listen: "0.0.0.0:9000"
  baseURL: "https://gw.example.com"
github:
  clientID: "iv1.abc"
  clientSecret: "file-secret"
  allowedUsers:
    - alice
    - Bob
backend:
  address: "127.0.0.1:7007"
  sharedSecret: "backend-secret"
tokens:
  accessTTL: 30m
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.Equal(t, "https://gw.example.com", cfg.Server.BaseURL)
	assert.Equal(t, []string{"alice", "Bob"}, cfg.GitHub.AllowedUsers)
	assert.Equal(t, "127.0.0.1:7007", cfg.Backend.Address)
	assert.Equal(t, 30*time.Minute, cfg.Tokens.AccessTTL.Std())
	// Unset TTLs keep their defaults.
	assert.Equal(t, 10*time.Minute, cfg.Tokens.CodeTTL.Std())
}

func TestLoadConfig_MissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv(EnvGitHubClientID, "env-client-id")
	t.Setenv(EnvGitHubClientSecret, "env-client-secret")
	t.Setenv(EnvBackendSecret, "env-backend-secret")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	// Still fails validation: no allow-list or backend address.
	require.Error(t, err)

	cfg, err := LoadConfig(writeConfigFile(t, `
github:
  allowedUsers: [alice]
backend:
  address: "127.0.0.1:7007"
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, "http://"+DefaultListen, cfg.Server.BaseURL, "baseURL is derived from listen")
	assert.Equal(t, "env-client-id", cfg.GitHub.ClientID)
	assert.Equal(t, "env-backend-secret", cfg.Backend.SharedSecret)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvGitHubClientSecret, "env-wins")

	cfg, err := LoadConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-wins", cfg.GitHub.ClientSecret)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := LoadConfig(writeConfigFile(t, "server: [not: a: mapping"))
	assert.Error(t, err)
}
