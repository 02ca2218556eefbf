package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"mcpgate/pkg/logging"
	pkgoauth "mcpgate/pkg/oauth"
)

// SecretHeader is the header carrying the shared secret the backend
// authenticates with.
const SecretHeader = "X-MCP-Secret"

// principalHeader tells the backend which gateway principal the request
// was authorized for. Informational only; the backend trusts the secret.
const principalHeader = "X-Forwarded-User"

const dialTimeout = 10 * time.Second

// TokenValidator checks a bearer token and reports the principal it was
// issued to. The flow state machine satisfies this.
type TokenValidator interface {
	ValidateAccessToken(token string) (string, bool)
}

// Config describes the backend the gateway fronts.
type Config struct {
	// BackendAddress is either a TCP host:port or "unix:/path/to.sock".
	// The transport dials only this address, whatever URL the backend
	// serves under.
	BackendAddress string
	// SharedSecret is injected as SecretHeader on every forwarded request.
	SharedSecret string
	// Realm is the gateway base URL used in WWW-Authenticate challenges.
	Realm string
	// ResourceMetadataURL is advertised in challenges so clients can
	// discover the authorization server (RFC 9728).
	ResourceMetadataURL string
}

// Gateway is the credential-translating reverse proxy in front of the
// private MCP backend.
type Gateway struct {
	validator TokenValidator
	cfg       Config
	proxy     *httputil.ReverseProxy
}

// NewGateway builds the proxy for the configured backend address.
func NewGateway(cfg Config, validator TokenValidator) (*Gateway, error) {
	if cfg.BackendAddress == "" {
		return nil, fmt.Errorf("backend address is required")
	}
	if cfg.SharedSecret == "" {
		return nil, fmt.Errorf("backend shared secret is required")
	}

	network, addr := "tcp", cfg.BackendAddress
	if path, ok := strings.CutPrefix(cfg.BackendAddress, "unix:"); ok {
		network, addr = "unix", path
	}

	g := &Gateway{validator: validator, cfg: cfg}

	dialer := &net.Dialer{Timeout: dialTimeout}
	transport := &http.Transport{
		// The proxy talks to exactly one place. The request URL's host is
		// ignored so a crafted Host header cannot steer the connection.
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   false,
		DisableCompression:  true,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	g.proxy = &httputil.ReverseProxy{
		Rewrite:      g.rewrite,
		Transport:    transport,
		ErrorHandler: g.backendError,
		// Flush every write immediately so server-sent events reach the
		// client as the backend produces them.
		FlushInterval: -1,
	}
	return g, nil
}

// ServeHTTP validates the bearer credential and forwards the request.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		g.unauthorized(w, CodeMissingAuth, "invalid_request", "missing or malformed Authorization header")
		return
	}

	principal, ok := g.validator.ValidateAccessToken(token)
	if !ok {
		logging.Warn("Proxy", "Rejected bearer token %s for %s %s",
			logging.TruncateToken(token), r.Method, r.URL.Path)
		g.unauthorized(w, CodeInvalidToken, "invalid_token", "access token is invalid or expired")
		return
	}

	// Stash the principal where rewrite will forward it. The header is
	// overwritten unconditionally so a client cannot smuggle one in.
	r.Header.Set(principalHeader, principal)

	logging.Debug("Proxy", "Forwarding %s %s for %s", r.Method, r.URL.Path, principal)
	g.proxy.ServeHTTP(w, r)
}

// rewrite shapes the outbound request for the backend. ReverseProxy has
// already dropped hop-by-hop headers (Connection, Keep-Alive,
// Transfer-Encoding and friends) before this is called.
func (g *Gateway) rewrite(pr *httputil.ProxyRequest) {
	pr.Out.URL.Scheme = "http"
	pr.Out.URL.Host = "mcp-backend"
	pr.Out.Host = ""

	// The gateway token must never reach the backend.
	pr.Out.Header.Del("Authorization")
	pr.Out.Header.Set(SecretHeader, g.cfg.SharedSecret)
	pr.SetXForwarded()
}

func (g *Gateway) backendError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error("Proxy", err, "Backend request failed for %s %s", r.Method, r.URL.Path)
	writeRPCError(w, http.StatusBadGateway, CodeUpstreamUnavailable, "backend is unavailable")
}

func (g *Gateway) unauthorized(w http.ResponseWriter, rpcCode int, oauthErr, message string) {
	w.Header().Set("WWW-Authenticate", pkgoauth.Challenge{
		Realm:               g.cfg.Realm,
		Error:               oauthErr,
		ErrorDescription:    message,
		ResourceMetadataURL: g.cfg.ResourceMetadataURL,
	}.Format())
	writeRPCError(w, http.StatusUnauthorized, rpcCode, message)
}

// bearerToken extracts the bearer credential, reporting false when the
// header is absent or not a bearer scheme.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// setCORSHeaders is deliberately permissive: legitimate MCP clients are
// always first-party tools, and the bearer requirement is the actual
// access control.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Mcp-Session-Id, MCP-Protocol-Version")
	w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, WWW-Authenticate")
}

var _ http.Handler = (*Gateway)(nil)
