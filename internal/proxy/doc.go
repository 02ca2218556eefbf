// Package proxy forwards protected requests to the private MCP backend.
//
// The gateway validates the caller's bearer token, then rewrites the
// request for the backend: the Authorization header is dropped and the
// backend shared secret is injected instead. The backend never sees
// gateway-issued tokens; it trusts only the shared secret. Responses,
// including streamed bodies, are relayed verbatim.
package proxy
