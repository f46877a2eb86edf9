// ABOUTME: HTTP server wiring the front controller, health, and metrics endpoints
// ABOUTME: Builds the *http.Server and optional JWT auth middleware around a Manager

package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuemby/rpmanager/internal/auth"
	"github.com/cuemby/rpmanager/internal/provider"
)

// Server wires the front controller, the health/metrics endpoints, and the
// optional JWT auth middleware into an *http.Server, mirroring the
// teacher's Gateway struct (minus everything that struct carries for
// bridges, web admin, and MCP — none of which this domain has).
type Server struct {
	manager *provider.Manager
	logger  *slog.Logger

	sendTimeout time.Duration

	httpServer *http.Server
}

// Config configures a Server.
type Config struct {
	Addr              string
	JWTSecret         string // empty disables auth middleware
	ReadHeaderTimeout time.Duration

	// SendTimeout bounds how long a subscribed connection's write may
	// block before it is treated as a slow consumer (providers.send_timeout).
	SendTimeout time.Duration
}

// NewServer builds the HTTP mux and wraps it in an *http.Server. Call Start
// to begin serving and Shutdown to stop gracefully.
func NewServer(cfg Config, manager *provider.Manager, logger *slog.Logger) *Server {
	s := &Server{
		manager:     manager,
		logger:      logger.With("component", "httpapi"),
		sendTimeout: cfg.SendTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.handleReady)
	mux.HandleFunc("/debug/vars", s.handleMetrics)

	callHandler := http.Handler(http.HandlerFunc(s.handleCall))
	if cfg.JWTSecret != "" {
		verifier := auth.NewJWTVerifier([]byte(cfg.JWTSecret))
		callHandler = auth.HTTPAuthMiddleware(verifier)(callHandler)
	}
	mux.Handle("/api/resource-providers/call", callHandler)

	readHeaderTimeout := cfg.ReadHeaderTimeout
	if readHeaderTimeout == 0 {
		readHeaderTimeout = 10 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Start begins serving and blocks until the server stops or errors. It
// returns nil on a clean Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting httpapi server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Handler exposes the underlying handler for tests that want to drive it
// with httptest.NewServer without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully stops the HTTP server, waiting for in-flight
// requests (including open SUBSCRIBE streams) to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady reports ready once the manager exists and can accept work;
// the manager has no separate startup phase (it is ready the instant it is
// constructed), so this simply confirms the dependency is wired.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.manager == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("manager not initialized"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = s.manager.Metrics().WriteTo(w)
}
