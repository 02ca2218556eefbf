package store

import "time"

// PendingSession is the state parked between the authorization request and
// the identity provider's redirect back to the gateway. The key it is
// stored under is the correlation id sent to the provider as its state
// parameter; it is only ever used to match the callback, never as a
// credential.
type PendingSession struct {
	// RedirectURI is the client's own redirect target, echoed back with
	// the authorization code once identity is proven.
	RedirectURI string
	// ClientState is the client's opaque state, returned verbatim.
	ClientState string
	// CodeChallenge and ChallengeMethod carry an optional PKCE binding
	// through to the authorization code.
	CodeChallenge   string
	ChallengeMethod string
	CreatedAt       time.Time
}

// AuthCode is a single-use authorization code bound to a verified principal.
type AuthCode struct {
	Principal       string
	CodeChallenge   string
	ChallengeMethod string
	CreatedAt       time.Time
}

// AccessToken is the bearer credential presented on proxied requests.
type AccessToken struct {
	Principal string
	IssuedAt  time.Time
}

// RefreshToken is exchangeable for a fresh access token. It rotates on
// use: redemption consumes it and mints a replacement.
type RefreshToken struct {
	Principal string
	IssuedAt  time.Time
}
