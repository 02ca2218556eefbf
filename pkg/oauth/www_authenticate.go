package oauth

import (
	"fmt"
	"strings"
)

// Challenge describes a Bearer WWW-Authenticate challenge emitted on 401
// responses per RFC 6750 §3.
type Challenge struct {
	// Realm identifies the protection space, typically the gateway base URL.
	Realm string
	// Error is the RFC 6750 error code (e.g. "invalid_token").
	Error string
	// ErrorDescription is a human-readable explanation. Must not contain
	// the presented credential.
	ErrorDescription string
	// ResourceMetadataURL points clients at the protected resource
	// metadata document (RFC 9728).
	ResourceMetadataURL string
}

// Format renders the challenge as a WWW-Authenticate header value.
//
// Example:
//
//	Bearer realm="https://gw.example.com", error="invalid_token", resource_metadata="https://gw.example.com/.well-known/oauth-protected-resource"
func (c Challenge) Format() string {
	parts := []string{}
	if c.Realm != "" {
		parts = append(parts, fmt.Sprintf("realm=%q", c.Realm))
	}
	if c.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", c.Error))
	}
	if c.ErrorDescription != "" {
		parts = append(parts, fmt.Sprintf("error_description=%q", c.ErrorDescription))
	}
	if c.ResourceMetadataURL != "" {
		parts = append(parts, fmt.Sprintf("resource_metadata=%q", c.ResourceMetadataURL))
	}

	if len(parts) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(parts, ", ")
}
