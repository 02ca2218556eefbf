package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"mcpgate/internal/identity"
	"mcpgate/pkg/logging"
)

// Handler provides the HTTP surface of the authorization server. It maps
// flow results onto the error taxonomy: client errors 400, authorization
// denials 403, grant errors 400 invalid_grant, upstream failures 502/504.
type Handler struct {
	flows *Flows
}

// NewHandler creates the HTTP handler over the flow state machine.
func NewHandler(flows *Flows) *Handler {
	return &Handler{flows: flows}
}

// handleCORS sets permissive cross-origin headers on every endpoint and
// answers preflight requests. Returns true when the request was a
// preflight and has been fully handled. Legitimate clients are
// first-party MCP tools; the OAuth dance itself is the access control.
func handleCORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// ServeAuthorize handles GET /authorize. Missing required parameters are a
// direct client error; redirecting on validation failure would leak the
// state parameter into error pages.
func (h *Handler) ServeAuthorize(w http.ResponseWriter, r *http.Request) {
	if handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, ErrorCodeInvalidRequest, "authorize endpoint accepts GET only", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	redirectURI := query.Get("redirect_uri")
	clientState := query.Get("state")

	if redirectURI == "" || clientState == "" {
		h.writeError(w, ErrorCodeInvalidRequest, "redirect_uri and state are required", http.StatusBadRequest)
		return
	}

	authURL, err := h.flows.StartAuthorization(
		redirectURI,
		clientState,
		query.Get("code_challenge"),
		query.Get("code_challenge_method"),
	)
	if err != nil {
		h.writeError(w, ErrorCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// ServeCallback handles the identity provider's redirect back to the
// gateway. Denials are rendered directly, never forwarded to the client's
// redirect URI: that target is client-controlled and must not learn why a
// principal was rejected.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, ErrorCodeInvalidRequest, "callback endpoint accepts GET only", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		logging.Warn("OAuth", "Provider callback returned error: %s", errParam)
		h.renderErrorPage(w, http.StatusBadRequest, "Authentication failed",
			fmt.Sprintf("The identity provider reported an error: %s", query.Get("error_description")))
		return
	}

	providerCode := query.Get("code")
	correlationID := query.Get("state")
	if providerCode == "" || correlationID == "" {
		h.renderErrorPage(w, http.StatusBadRequest, "Invalid callback",
			"The callback is missing required parameters.")
		return
	}

	redirect, err := h.flows.CompleteAuthorization(r.Context(), providerCode, correlationID)
	if err != nil {
		h.renderCallbackError(w, err)
		return
	}

	http.Redirect(w, r, redirect, http.StatusFound)
}

// renderCallbackError maps a CompleteAuthorization failure onto the error
// taxonomy.
func (h *Handler) renderCallbackError(w http.ResponseWriter, err error) {
	var denied *identity.NotAuthorizedError

	switch {
	case errors.As(err, &denied):
		h.renderErrorPage(w, http.StatusForbidden, "Access denied",
			fmt.Sprintf("User %q is not authorized to use this gateway.", denied.Login))

	case errors.Is(err, ErrSessionNotFound):
		h.renderErrorPage(w, http.StatusBadRequest, "Session expired",
			"The authentication session was not found or has expired. Please start over.")

	case errors.Is(err, context.DeadlineExceeded):
		h.renderErrorPage(w, http.StatusGatewayTimeout, "Identity provider timeout",
			"The identity provider did not respond in time. Please try again.")

	case errors.Is(err, identity.ErrProfileFetch):
		h.renderErrorPage(w, http.StatusBadGateway, "Identity provider error",
			"The identity provider could not be reached. Please try again.")

	case errors.Is(err, identity.ErrExchangeFailed):
		h.renderErrorPage(w, http.StatusBadRequest, "Authentication failed",
			"The identity provider rejected the login attempt. Please start over.")

	default:
		logging.Error("OAuth", err, "Callback processing failed")
		h.renderErrorPage(w, http.StatusInternalServerError, "Internal error",
			"Something went wrong completing the login. Please try again.")
	}
}

// ServeToken handles POST /token for the authorization_code and
// refresh_token grants.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	if handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, ErrorCodeInvalidRequest, "token endpoint accepts POST only", http.StatusMethodNotAllowed)
		return
	}

	params, err := parseTokenRequest(r)
	if err != nil {
		h.writeError(w, ErrorCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}

	switch params.Get("grant_type") {
	case GrantTypeAuthorizationCode:
		code := params.Get("code")
		if code == "" {
			h.writeError(w, ErrorCodeInvalidRequest, "code is required", http.StatusBadRequest)
			return
		}
		resp, err := h.flows.ExchangeAuthorizationCode(code, params.Get("code_verifier"))
		h.writeGrantResult(w, resp, err)

	case GrantTypeRefreshToken:
		refreshToken := params.Get("refresh_token")
		if refreshToken == "" {
			h.writeError(w, ErrorCodeInvalidRequest, "refresh_token is required", http.StatusBadRequest)
			return
		}
		resp, err := h.flows.RefreshAccessToken(refreshToken)
		h.writeGrantResult(w, resp, err)

	default:
		h.writeError(w, ErrorCodeUnsupportedGrantType,
			fmt.Sprintf("supported grant types: %s, %s", GrantTypeAuthorizationCode, GrantTypeRefreshToken),
			http.StatusBadRequest)
	}
}

// writeGrantResult writes either the token response or the mapped grant
// error.
func (h *Handler) writeGrantResult(w http.ResponseWriter, resp *TokenResponse, err error) {
	if err != nil {
		if errors.Is(err, ErrInvalidGrant) {
			h.writeError(w, ErrorCodeInvalidGrant, strippedGrantDetail(err), http.StatusBadRequest)
			return
		}
		logging.Error("OAuth", err, "Token grant failed")
		h.writeError(w, ErrorCodeServerError, "failed to issue tokens", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("OAuth", err, "Failed to write token response")
	}
}

// strippedGrantDetail turns "invalid_grant: detail" into "detail" so the
// error code is not repeated inside the description.
func strippedGrantDetail(err error) string {
	return strings.TrimPrefix(strings.TrimPrefix(err.Error(), ErrorCodeInvalidGrant), ": ")
}

// ServeRevoke handles POST /revoke per RFC 7009. Revoking an unknown token
// still returns 200: the desired end state holds either way.
func (h *Handler) ServeRevoke(w http.ResponseWriter, r *http.Request) {
	if handleCORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, ErrorCodeInvalidRequest, "revocation endpoint accepts POST only", http.StatusMethodNotAllowed)
		return
	}

	params, err := parseTokenRequest(r)
	if err != nil {
		h.writeError(w, ErrorCodeInvalidRequest, err.Error(), http.StatusBadRequest)
		return
	}

	token := params.Get("token")
	if token == "" {
		h.writeError(w, ErrorCodeInvalidRequest, "token is required", http.StatusBadRequest)
		return
	}

	h.flows.Revoke(token)
	w.WriteHeader(http.StatusOK)
}

// ServeMetadata handles GET /.well-known/oauth-authorization-server
// (RFC 8414). The document is derived from the inbound request so the
// gateway works behind any hostname without extra configuration.
func (h *Handler) ServeMetadata(w http.ResponseWriter, r *http.Request) {
	if handleCORS(w, r) {
		return
	}
	base := requestBaseURL(r)

	metadata := ServerMetadata{
		Issuer:                            base,
		AuthorizationEndpoint:             base + "/authorize",
		TokenEndpoint:                     base + "/token",
		RevocationEndpoint:                base + "/revoke",
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{GrantTypeAuthorizationCode, GrantTypeRefreshToken},
		CodeChallengeMethodsSupported:     []string{"S256"},
		TokenEndpointAuthMethodsSupported: []string{"none", "client_secret_post"},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		logging.Error("OAuth", err, "Failed to write server metadata")
	}
}

// ServeProtectedResourceMetadata handles
// GET /.well-known/oauth-protected-resource (RFC 9728).
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if handleCORS(w, r) {
		return
	}
	base := requestBaseURL(r)

	metadata := ResourceMetadata{
		Resource:               base,
		AuthorizationServers:   []string{base},
		BearerMethodsSupported: []string{"header"},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		logging.Error("OAuth", err, "Failed to write resource metadata")
	}
}

// requestBaseURL derives scheme://host from the inbound request,
// respecting the X-Forwarded-Proto a TLS-terminating fronting proxy sets.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// writeError writes an OAuth error response body per RFC 6749 §5.2.
func (h *Handler) writeError(w http.ResponseWriter, code, description string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error("OAuth", err, "Failed to write error response")
	}
}

// setSecurityHeaders sets recommended security headers for HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

// renderErrorPage renders a small HTML error page for browser-facing
// failures during the redirect dance. The message never contains secrets;
// user-influenced values are escaped.
func (h *Handler) renderErrorPage(w http.ResponseWriter, status int, title, message string) {
	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%[1]s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
               display: flex; align-items: center; justify-content: center;
               min-height: 100vh; margin: 0; background: #16213e; color: #eee; }
        .card { text-align: center; padding: 2rem 3rem; background: #1a1a2e;
                border-radius: 8px; max-width: 32rem; }
        h1 { font-size: 1.4rem; }
        p { color: #aab; }
    </style>
</head>
<body>
    <div class="card">
        <h1>%[1]s</h1>
        <p>%[2]s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}
