package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mcpgate/internal/oauth"
	"mcpgate/internal/proxy"
	"mcpgate/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds response writes. Generous because MCP
	// responses can stream for a while.
	DefaultWriteTimeout = 120 * time.Second
	// DefaultIdleTimeout is the idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
)

// Server is the gateway's HTTP front. It owns the listener; the OAuth
// handler and the proxy gateway do the actual work.
type Server struct {
	listen     string
	oauth      *oauth.Handler
	gateway    *proxy.Gateway
	httpServer *http.Server
}

// New assembles a server from the already-wired handlers.
func New(listen string, oauthHandler *oauth.Handler, gateway *proxy.Gateway) *Server {
	return &Server{
		listen:  listen,
		oauth:   oauthHandler,
		gateway: gateway,
	}
}

// CreateMux builds the route table. Everything under /mcp requires a
// bearer token; the OAuth and discovery endpoints are public.
func (s *Server) CreateMux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("/.well-known/oauth-authorization-server", s.oauth.ServeMetadata)
	mux.HandleFunc("/.well-known/oauth-protected-resource", s.oauth.ServeProtectedResourceMetadata)

	mux.HandleFunc("/authorize", s.oauth.ServeAuthorize)
	mux.HandleFunc("/callback", s.oauth.ServeCallback)
	mux.HandleFunc("/token", s.oauth.ServeToken)
	mux.HandleFunc("/revoke", s.oauth.ServeRevoke)

	mux.Handle("/mcp", s.gateway)
	mux.Handle("/mcp/", s.gateway)

	return mux
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.listen,
		Handler:           s.CreateMux(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	logging.Info("Server", "Listening on %s", s.listen)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logging.Info("Server", "Shutting down")
	return s.httpServer.Shutdown(ctx)
}
