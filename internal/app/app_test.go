package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpgate/pkg/logging"
)

const testConfigYAML = `
server:
  listen: "127.0.0.1:0"
  baseURL: "https://gw.example.com"
github:
  clientID: "iv1.abc"
  clientSecret: "secret"
  allowedUsers: [alice]
backend:
  address: "127.0.0.1:7007"
  sharedSecret: "backend-secret"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewApplication(t *testing.T) {
	a, err := NewApplication(writeTestConfig(t, testConfigYAML), false)
	require.NoError(t, err)
	require.NotNil(t, a)
	a.store.Stop()
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	_, err := NewApplication(writeTestConfig(t, "github:\n  clientID: only-this\n"), false)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := NewApplication(writeTestConfig(t, testConfigYAML), false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Give the listener a moment to come up, then cancel.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logging.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, logging.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, logging.LevelError, parseLogLevel("error"))
	assert.Equal(t, logging.LevelInfo, parseLogLevel(""))
	assert.Equal(t, logging.LevelInfo, parseLogLevel("anything-else"))
}
