// Package identity proves who is on the other end of an authorization
// callback. It exchanges the identity provider's code for a provider
// token, fetches the user profile with it, and checks the normalized
// login against the configured allow-list.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"mcpgate/pkg/logging"
)

const (
	// defaultProfileURL is GitHub's authenticated-user endpoint.
	defaultProfileURL = "https://api.github.com/user"

	// providerTimeout bounds every call to the identity provider. On
	// timeout the caller gets an upstream error, never a hang.
	providerTimeout = 15 * time.Second

	// maxProfileResponseSize caps the profile body read. 64KB is far more
	// than a user object needs.
	maxProfileResponseSize = 64 * 1024
)

// Sentinel errors for the verification taxonomy. NotAuthorizedError is a
// separate type because the callback must name the rejected login.
var (
	// ErrExchangeFailed means the provider rejected the authorization code
	// or returned no usable token.
	ErrExchangeFailed = errors.New("identity provider rejected the authorization code")

	// ErrProfileFetch means the provider token worked but the profile
	// could not be fetched or parsed.
	ErrProfileFetch = errors.New("failed to fetch user profile from identity provider")
)

// NotAuthorizedError means identity was proven but the principal is not on
// the allow-list. It is surfaced to the end user so they understand why
// access was denied.
type NotAuthorizedError struct {
	Login string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("user %q is not authorized to use this gateway", e.Login)
}

// Config holds the identity provider credentials and the allow-list.
// AuthURL, TokenURL and ProfileURL default to GitHub and exist so tests
// can point the verifier at a fake provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AllowedUsers []string

	AuthURL    string
	TokenURL   string
	ProfileURL string
}

// Verifier exchanges external authorization codes for verified principals.
type Verifier struct {
	oauthConfig *oauth2.Config
	profileURL  string
	httpClient  *http.Client
	allowed     map[string]bool
}

// NewVerifier creates a Verifier from the given configuration.
func NewVerifier(cfg Config) *Verifier {
	endpoint := githuboauth.Endpoint
	if cfg.AuthURL != "" || cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		}
	}

	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = defaultProfileURL
	}

	allowed := make(map[string]bool, len(cfg.AllowedUsers))
	for _, user := range cfg.AllowedUsers {
		allowed[strings.ToLower(user)] = true
	}

	return &Verifier{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user"},
		},
		profileURL: profileURL,
		httpClient: &http.Client{Timeout: providerTimeout},
		allowed:    allowed,
	}
}

// AuthCodeURL builds the identity provider's authorization URL with the
// given correlation id as the provider-side state parameter.
func (v *Verifier) AuthCodeURL(correlationID string) string {
	return v.oauthConfig.AuthCodeURL(correlationID)
}

// IsAllowed reports whether a principal is on the allow-list. Membership
// is case-insensitive.
func (v *Verifier) IsAllowed(login string) bool {
	return v.allowed[strings.ToLower(login)]
}

// Verify exchanges an external authorization code, fetches the user's
// identity, and checks it against the allow-list. Returns the normalized
// principal identifier on success.
func (v *Verifier) Verify(ctx context.Context, externalCode string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	// Route the exchange through our bounded HTTP client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)

	token, err := v.oauthConfig.Exchange(ctx, externalCode)
	if err != nil {
		logging.Debug("Identity", "Provider code exchange failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: provider returned an empty token", ErrExchangeFailed)
	}

	login, err := v.fetchLogin(ctx, token.AccessToken)
	if err != nil {
		return "", err
	}

	principal := strings.ToLower(login)
	if !v.allowed[principal] {
		logging.Warn("Identity", "Denied user %q (not on allow-list)", principal)
		return "", &NotAuthorizedError{Login: principal}
	}

	logging.Info("Identity", "Verified user %q", principal)
	return principal, nil
}

// fetchLogin retrieves the user profile with the provider token and
// extracts the login.
func (v *Verifier) fetchLogin(ctx context.Context, providerToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.profileURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+providerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.Debug("Identity", "Profile fetch failed: status=%d", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrProfileFetch, resp.StatusCode)
	}

	var profile struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	if profile.Login == "" {
		return "", fmt.Errorf("%w: profile has no login", ErrProfileFetch)
	}

	return profile.Login, nil
}
