package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"tapetail/internal/api"
	"tapetail/internal/config"
	"tapetail/internal/logging"
	"tapetail/internal/metrics"
)

// APIServer exposes the daemon's HTTP surface: health, status, the latest
// snapshot, the Prometheus scrape endpoint, and the live snapshot stream.
type APIServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	sink   *metrics.PrometheusSink
	hub    *WatchHub

	listener net.Listener
	server   *http.Server
}

// NewAPIServer builds the HTTP server for cfg.Paths.APIBind. A blank bind
// disables the surface and returns nil without error.
func NewAPIServer(cfg *config.Config, d *Daemon, sink *metrics.PrometheusSink, hub *WatchHub, logger *slog.Logger) (*APIServer, error) {
	if cfg == nil || d == nil || sink == nil {
		return nil, errors.New("api server requires config, daemon, and sink")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &APIServer{
		bind:   bind,
		logger: logger,
		daemon: d,
		sink:   sink,
		hub:    hub,
	}

	inst := metrics.NewHTTPInstrumentation(sink.Registry())
	mux := http.NewServeMux()
	mux.Handle("/healthz", inst.Wrap("/healthz", http.HandlerFunc(srv.handleHealth)))
	mux.Handle("/api/status", inst.Wrap("/api/status", http.HandlerFunc(srv.handleStatus)))
	mux.Handle("/api/latest", inst.Wrap("/api/latest", http.HandlerFunc(srv.handleLatest)))
	mux.Handle("/metrics", sink.Handler())
	if hub != nil {
		// Deliberately not instrumented: the wrapper's response recorder
		// does not pass http.Hijacker through to the upgrader.
		mux.Handle("/api/watch", hub)
	}

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start binds the listener and serves until ctx is cancelled.
func (s *APIServer) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *APIServer) Stop() {
	if s == nil || s.server == nil {
		return
	}
	if s.hub != nil {
		s.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, or "" before Start.
func (s *APIServer) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler exposes the route table for in-process tests.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		StartedAt:    status.StartedAt,
		LockFilePath: status.LockFilePath,
		TelemetryLog: status.TelemetryLog,
		APIBind:      status.APIBind,
		HasSnapshot:  status.HasSnapshot,
		Collector:    api.FromCollectorStatus(status.Collector),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *APIServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snapshot, ok := s.daemon.Snapshot()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no telemetry received yet")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSnapshot(snapshot))
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *APIServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
