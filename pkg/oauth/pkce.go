package oauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	// PKCEMethodS256 is the SHA-256 code challenge method (RFC 7636 §4.2).
	PKCEMethodS256 = "S256"
	// PKCEMethodPlain is the plain code challenge method. Accepted for
	// compatibility; S256 is what the gateway advertises.
	PKCEMethodPlain = "plain"
)

// S256Challenge computes the S256 code challenge for a verifier:
// base64url(SHA256(verifier)), unpadded.
func S256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// VerifyChallenge checks a code_verifier against a stored code challenge.
// The comparison is constant-time so a mismatch reveals nothing about how
// close the guess was.
func VerifyChallenge(challenge, method, verifier string) error {
	if verifier == "" {
		return fmt.Errorf("code_verifier is required")
	}

	var computed string
	switch method {
	case PKCEMethodS256, "":
		// S256 is the default when the client omitted the method.
		computed = S256Challenge(verifier)
	case PKCEMethodPlain:
		computed = verifier
	default:
		return fmt.Errorf("unsupported code_challenge_method: %s", method)
	}

	if subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) != 1 {
		return fmt.Errorf("code_verifier does not match challenge")
	}
	return nil
}
