// Package preview serves the built site locally over HTTP.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/IQDevs/blog/internal/logfields"
	"github.com/IQDevs/blog/internal/metrics"
	"github.com/IQDevs/blog/internal/version"
)

// Server serves a site directory with health and optional metrics endpoints.
type Server struct {
	siteDir  string
	port     int
	registry *prom.Registry // nil disables /metrics
	started  time.Time

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a preview server for siteDir on the given port.
func NewServer(siteDir string, port int) *Server {
	return &Server{siteDir: siteDir, port: port}
}

// WithMetrics exposes /metrics backed by the given registry (fluent helper).
func (s *Server) WithMetrics(reg *prom.Registry) *Server {
	s.registry = reg
	return s
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.siteDir)))
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	s.listener = ln
	s.started = time.Now()
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server failed", logfields.Error(err))
		}
	}()

	slog.Info("Preview server listening",
		slog.String("addr", s.Addr()),
		logfields.Path(s.siteDir))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"version":        version.Version,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}
