package config

import "time"

const (
	// DefaultListen is the default bind address.
	DefaultListen = "localhost:8090"
)

// GetDefaultConfig returns the built-in defaults. Credentials and the
// allow-list have no defaults and must be configured.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Listen:   DefaultListen,
			LogLevel: "info",
		},
		Tokens: TokenConfig{
			AccessTTL:  Duration(time.Hour),
			RefreshTTL: Duration(30 * 24 * time.Hour),
			CodeTTL:    Duration(10 * time.Minute),
			SessionTTL: Duration(10 * time.Minute),
		},
	}
}
