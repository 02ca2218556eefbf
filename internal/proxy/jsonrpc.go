package proxy

import (
	"encoding/json"
	"net/http"
)

// JSON-RPC error codes surfaced to MCP clients. They sit in the
// implementation-defined server error range (-32000 to -32099).
const (
	// CodeMissingAuth means the Authorization header was absent or not a
	// bearer credential.
	CodeMissingAuth = -32001
	// CodeInvalidToken means a bearer token was presented but is unknown,
	// expired or revoked.
	CodeInvalidToken = -32002
	// CodeUpstreamUnavailable means the backend could not be reached.
	CodeUpstreamUnavailable = -32003
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcErrorEnvelope struct {
	JSONRPC string   `json:"jsonrpc"`
	ID      any      `json:"id"`
	Error   rpcError `json:"error"`
}

// writeRPCError emits a JSON-RPC shaped error body. MCP clients speak
// JSON-RPC over HTTP, so protocol-level failures carry an error object
// rather than a bare status line.
func writeRPCError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rpcErrorEnvelope{
		JSONRPC: "2.0",
		ID:      nil,
		Error:   rpcError{Code: code, Message: message},
	})
}
