package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"mcpgate/internal/identity"
	"mcpgate/internal/store"
	"mcpgate/pkg/logging"
	pkgoauth "mcpgate/pkg/oauth"
)

// Flow-level sentinel errors. Handlers map these onto the HTTP error
// taxonomy; the flows themselves never touch a ResponseWriter.
var (
	// ErrSessionNotFound means the correlation id did not resolve to a
	// live pending session. Covers expiry and replayed callbacks alike.
	ErrSessionNotFound = errors.New("authorization session not found or expired")

	// ErrInvalidGrant means the presented code, refresh token or PKCE
	// verifier did not check out. Deliberately indistinguishable across
	// causes (unknown, expired, consumed, mismatched verifier).
	ErrInvalidGrant = errors.New(ErrorCodeInvalidGrant)
)

// Flows is the authorization server state machine. It owns no HTTP
// concerns; the Handler layers those on top.
type Flows struct {
	store    store.Store
	verifier *identity.Verifier
	cfg      Config
}

// NewFlows creates the flow state machine over the given store and
// identity verifier.
func NewFlows(s store.Store, v *identity.Verifier, cfg Config) *Flows {
	return &Flows{
		store:    s,
		verifier: v,
		cfg:      cfg.withDefaults(),
	}
}

// AccessTokenTTL exposes the configured access token lifetime.
func (f *Flows) AccessTokenTTL() time.Duration {
	return f.cfg.AccessTTL
}

// StartAuthorization admits a client authorization request: parks a
// pending session under a fresh correlation id and returns the identity
// provider URL to redirect the user agent to.
//
// The caller has already validated that redirectURI and clientState are
// present; a missing parameter is a client error, not a flow error.
func (f *Flows) StartAuthorization(redirectURI, clientState, codeChallenge, challengeMethod string) (string, error) {
	if codeChallenge != "" {
		switch challengeMethod {
		case "", pkgoauth.PKCEMethodS256, pkgoauth.PKCEMethodPlain:
		default:
			return "", fmt.Errorf("%s: unsupported code_challenge_method %q", ErrorCodeInvalidRequest, challengeMethod)
		}
	}

	correlationID := uuid.NewString()

	store.PutSession(f.store, correlationID, &store.PendingSession{
		RedirectURI:     redirectURI,
		ClientState:     clientState,
		CodeChallenge:   codeChallenge,
		ChallengeMethod: challengeMethod,
		CreatedAt:       time.Now(),
	}, f.cfg.SessionTTL)

	logging.Debug("OAuth", "Started authorization flow correlation=%s", logging.TruncateToken(correlationID))

	return f.verifier.AuthCodeURL(correlationID), nil
}

// CompleteAuthorization handles the identity provider's redirect: claims
// the pending session (at most once), verifies identity, mints an
// authorization code bound to the verified principal, and returns the
// client redirect URL carrying the code and the client's original state.
//
// The session is consumed before verification begins, so two concurrent
// replays of the same callback race for exactly one winner; the loser
// gets ErrSessionNotFound.
func (f *Flows) CompleteAuthorization(ctx context.Context, providerCode, correlationID string) (string, error) {
	sess, ok := store.ConsumeSession(f.store, correlationID)
	if !ok {
		logging.Warn("OAuth", "Callback with unknown or expired correlation id")
		return "", ErrSessionNotFound
	}

	principal, err := f.verifier.Verify(ctx, providerCode)
	if err != nil {
		// Denied and failed verifications are terminal: the consumed
		// session is gone and the flow must restart.
		return "", err
	}

	code, err := pkgoauth.RandomToken()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrorCodeServerError, err)
	}

	store.PutCode(f.store, code, &store.AuthCode{
		Principal:       principal,
		CodeChallenge:   sess.CodeChallenge,
		ChallengeMethod: sess.ChallengeMethod,
		CreatedAt:       time.Now(),
	}, f.cfg.CodeTTL)

	redirect, err := buildClientRedirect(sess.RedirectURI, code, sess.ClientState)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrorCodeServerError, err)
	}

	logging.Info("OAuth", "Issued authorization code for %q (code=%s)", principal, logging.TruncateToken(code))
	return redirect, nil
}

// ExchangeAuthorizationCode redeems a single-use authorization code for an
// access/refresh token pair. If a PKCE challenge was bound to the code the
// matching code_verifier is mandatory.
func (f *Flows) ExchangeAuthorizationCode(code, codeVerifier string) (*TokenResponse, error) {
	ac, ok := store.ConsumeCode(f.store, code)
	if !ok {
		return nil, fmt.Errorf("%w: authorization code is unknown, expired or already redeemed", ErrInvalidGrant)
	}

	if ac.CodeChallenge != "" {
		if err := pkgoauth.VerifyChallenge(ac.CodeChallenge, ac.ChallengeMethod, codeVerifier); err != nil {
			logging.Warn("OAuth", "PKCE verification failed for %q", ac.Principal)
			return nil, fmt.Errorf("%w: %v", ErrInvalidGrant, err)
		}
	}

	resp, err := f.mintTokens(ac.Principal)
	if err != nil {
		return nil, err
	}

	logging.Info("OAuth", "Exchanged authorization code for tokens (user=%q)", ac.Principal)
	return resp, nil
}

// RefreshAccessToken redeems a refresh token for a new token pair.
// Refresh tokens rotate: the presented token is consumed and a
// replacement is minted, so a replayed refresh token fails.
func (f *Flows) RefreshAccessToken(refreshToken string) (*TokenResponse, error) {
	rt, ok := store.ConsumeRefreshToken(f.store, refreshToken)
	if !ok {
		return nil, fmt.Errorf("%w: refresh token is unknown, expired or already used", ErrInvalidGrant)
	}

	resp, err := f.mintTokens(rt.Principal)
	if err != nil {
		return nil, err
	}

	logging.Info("OAuth", "Rotated refresh token (user=%q)", rt.Principal)
	return resp, nil
}

// Revoke deletes the presented token whether it is an access or a refresh
// token. Unknown tokens are not an error (RFC 7009 §2.2).
func (f *Flows) Revoke(token string) {
	f.store.Delete(store.KindAccess, token)
	f.store.Delete(store.KindRefresh, token)
}

// ValidateAccessToken resolves a bearer token to its principal. Expiry is
// checked by the store at call time.
func (f *Flows) ValidateAccessToken(token string) (string, bool) {
	at, ok := store.GetAccessToken(f.store, token)
	if !ok {
		return "", false
	}
	return at.Principal, true
}

// mintTokens creates a new access/refresh token pair for a principal.
func (f *Flows) mintTokens(principal string) (*TokenResponse, error) {
	accessToken, err := pkgoauth.RandomToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorCodeServerError, err)
	}
	refreshToken, err := pkgoauth.RandomToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorCodeServerError, err)
	}

	now := time.Now()
	store.PutAccessToken(f.store, accessToken, &store.AccessToken{
		Principal: principal,
		IssuedAt:  now,
	}, f.cfg.AccessTTL)
	store.PutRefreshToken(f.store, refreshToken, &store.RefreshToken{
		Principal: principal,
		IssuedAt:  now,
	}, f.cfg.RefreshTTL)

	return &TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(f.cfg.AccessTTL.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

// buildClientRedirect appends code and state to the client's redirect URI,
// preserving any query parameters it already carries.
func buildClientRedirect(redirectURI, code, clientState string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("invalid client redirect URI: %w", err)
	}

	query := u.Query()
	query.Set("code", code)
	query.Set("state", clientState)
	u.RawQuery = query.Encode()

	return u.String(), nil
}
