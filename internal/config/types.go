package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30m" or bare integer nanoseconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value at line %d", value.Line)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the top-level configuration structure for mcpgate.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	GitHub  GitHubConfig  `yaml:"github"`
	Backend BackendConfig `yaml:"backend"`
	Tokens  TokenConfig   `yaml:"tokens,omitempty"`
}

// ServerConfig describes the public listener.
type ServerConfig struct {
	// Listen is the host:port the gateway binds to (default: localhost:8090).
	Listen string `yaml:"listen,omitempty"`
	// BaseURL is the externally visible base URL, used for the OAuth
	// redirect registered with the identity provider. Defaults to
	// http://<listen>.
	BaseURL string `yaml:"baseURL,omitempty"`
	// LogLevel is one of debug, info, warn, error (default: info).
	LogLevel string `yaml:"logLevel,omitempty"`
}

// GitHubConfig holds the OAuth app credentials and the user allow-list.
type GitHubConfig struct {
	ClientID     string `yaml:"clientID,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	// AllowedUsers is the static allow-list of GitHub logins. Comparison
	// is case-insensitive.
	AllowedUsers []string `yaml:"allowedUsers,omitempty"`
}

// BackendConfig describes the private MCP backend behind the proxy.
type BackendConfig struct {
	// Address is a TCP host:port or "unix:/path/to.sock".
	Address      string `yaml:"address,omitempty"`
	SharedSecret string `yaml:"sharedSecret,omitempty"`
}

// TokenConfig holds the token and flow-state lifetimes.
type TokenConfig struct {
	AccessTTL  Duration `yaml:"accessTTL,omitempty"`
	RefreshTTL Duration `yaml:"refreshTTL,omitempty"`
	CodeTTL    Duration `yaml:"codeTTL,omitempty"`
	SessionTTL Duration `yaml:"sessionTTL,omitempty"`
}
