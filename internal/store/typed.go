package store

import "time"

// Typed accessors over the Store contract. They keep the type assertions
// in one place so the flows never handle raw any values.

// PutSession stores a pending authorization session under its correlation id.
func PutSession(s Store, correlationID string, sess *PendingSession, ttl time.Duration) {
	s.Put(KindSession, correlationID, sess, ttl)
}

// ConsumeSession atomically claims the pending session for a correlation id.
// The second return is false when the session is absent, expired, or was
// already claimed by a concurrent callback.
func ConsumeSession(s Store, correlationID string) (*PendingSession, bool) {
	v, ok := s.Consume(KindSession, correlationID)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*PendingSession)
	return sess, ok
}

// PutCode stores a freshly minted authorization code.
func PutCode(s Store, code string, ac *AuthCode, ttl time.Duration) {
	s.Put(KindCode, code, ac, ttl)
}

// ConsumeCode atomically redeems an authorization code.
func ConsumeCode(s Store, code string) (*AuthCode, bool) {
	v, ok := s.Consume(KindCode, code)
	if !ok {
		return nil, false
	}
	ac, ok := v.(*AuthCode)
	return ac, ok
}

// PutAccessToken stores an access token.
func PutAccessToken(s Store, token string, at *AccessToken, ttl time.Duration) {
	s.Put(KindAccess, token, at, ttl)
}

// GetAccessToken looks up a live access token. Unlike codes, access tokens
// survive reads; they die by TTL or revocation.
func GetAccessToken(s Store, token string) (*AccessToken, bool) {
	v, ok := s.Get(KindAccess, token)
	if !ok {
		return nil, false
	}
	at, ok := v.(*AccessToken)
	return at, ok
}

// PutRefreshToken stores a refresh token.
func PutRefreshToken(s Store, token string, rt *RefreshToken, ttl time.Duration) {
	s.Put(KindRefresh, token, rt, ttl)
}

// ConsumeRefreshToken atomically redeems a refresh token. Refresh tokens
// rotate: redemption invalidates the presented token.
func ConsumeRefreshToken(s Store, token string) (*RefreshToken, bool) {
	v, ok := s.Consume(KindRefresh, token)
	if !ok {
		return nil, false
	}
	rt, ok := v.(*RefreshToken)
	return rt, ok
}
