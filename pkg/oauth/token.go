package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the number of random bytes for opaque credentials
// (authorization codes, access tokens, refresh tokens). 32 bytes provides
// 256 bits of entropy, comfortably above the 128-bit floor for unguessable
// bearer credentials.
const tokenBytes = 32

// RandomToken generates a cryptographically random opaque credential,
// base64url-encoded without padding.
func RandomToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
