// Package oauth provides shared OAuth 2.1 primitives for mcpgate:
// cryptographically random opaque tokens, PKCE challenge verification,
// and WWW-Authenticate header formatting per RFC 6750.
//
// These helpers are deliberately free of HTTP handler or storage concerns
// so both the authorization server flows and the proxy middleware can use
// them.
package oauth
