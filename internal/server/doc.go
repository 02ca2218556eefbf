// Package server assembles the gateway's HTTP surface: the OAuth
// endpoints, the discovery documents, the health check and the
// protected MCP proxy, all on a single listener.
package server
