// Package config loads and validates the gateway configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML
// file, then environment variables for secrets. Secrets (the GitHub
// client secret and the backend shared secret) can live in the YAML
// file for development but should come from the environment in
// production:
//
//	MCPGATE_GITHUB_CLIENT_ID
//	MCPGATE_GITHUB_CLIENT_SECRET
//	MCPGATE_BACKEND_SECRET
package config
