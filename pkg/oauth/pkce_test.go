package oauth

import (
	"strings"
	"testing"
)

func TestRandomTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := RandomToken()
		if err != nil {
			t.Fatalf("RandomToken failed: %v", err)
		}
		if len(token) != 43 { // 32 bytes base64url, unpadded
			t.Errorf("Expected 43-char token, got %d chars", len(token))
		}
		if seen[token] {
			t.Fatal("RandomToken returned a duplicate")
		}
		seen[token] = true
	}
}

func TestRandomTokenURLSafe(t *testing.T) {
	token, err := RandomToken()
	if err != nil {
		t.Fatalf("RandomToken failed: %v", err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("Token contains non-URL-safe characters: %s", token)
	}
}

func TestVerifyChallengeS256(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	challenge := S256Challenge(verifier)

	if err := VerifyChallenge(challenge, PKCEMethodS256, verifier); err != nil {
		t.Errorf("Expected matching verifier to pass: %v", err)
	}

	// Empty method defaults to S256.
	if err := VerifyChallenge(challenge, "", verifier); err != nil {
		t.Errorf("Expected empty method to default to S256: %v", err)
	}

	if err := VerifyChallenge(challenge, PKCEMethodS256, "wrong-verifier"); err == nil {
		t.Error("Expected mismatched verifier to fail")
	}
}

func TestVerifyChallengeRFCVector(t *testing.T) {
	// Test vector from RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	expected := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	if got := S256Challenge(verifier); got != expected {
		t.Errorf("S256Challenge() = %q, want %q", got, expected)
	}
}

func TestVerifyChallengePlain(t *testing.T) {
	if err := VerifyChallenge("my-verifier", PKCEMethodPlain, "my-verifier"); err != nil {
		t.Errorf("Expected plain match to pass: %v", err)
	}
	if err := VerifyChallenge("my-verifier", PKCEMethodPlain, "other"); err == nil {
		t.Error("Expected plain mismatch to fail")
	}
}

func TestVerifyChallengeRejectsEmptyVerifier(t *testing.T) {
	if err := VerifyChallenge("anything", PKCEMethodS256, ""); err == nil {
		t.Error("Expected empty verifier to fail")
	}
}

func TestVerifyChallengeUnknownMethod(t *testing.T) {
	if err := VerifyChallenge("c", "S512", "v"); err == nil {
		t.Error("Expected unknown method to fail")
	}
}
