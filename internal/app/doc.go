// Package app bootstraps the gateway: it loads configuration, wires the
// token store, identity verifier, OAuth flows and proxy together, and
// runs the HTTP server until the context is cancelled.
package app
