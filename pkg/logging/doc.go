// Package logging provides the structured logging system for mcpgate.
//
// It is a thin wrapper over Go's standard slog package that adds a
// subsystem tag to every entry and printf-style formatting helpers.
//
// # Usage
//
//	import "mcpgate/pkg/logging"
//
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Gateway starting on %s", addr)
//	logging.Debug("Store", "Swept %d expired entries", n)
//	logging.Error("Proxy", err, "Backend request failed")
//
// # Subsystems
//
// Logs are tagged by subsystem so aggregation systems can filter them:
//
//   - Bootstrap: application initialization and startup
//   - Config: configuration loading and validation
//   - Store: token store operations and expiry sweeps
//   - Identity: identity provider exchange and allow-list checks
//   - OAuth: authorization, callback and token endpoint flows
//   - Proxy: backend forwarding
//
// # Secrets
//
// Raw tokens, authorization codes, client secrets and the backend shared
// secret must never appear in a log line. Use TruncateToken when a
// credential prefix is needed for correlation.
package logging
