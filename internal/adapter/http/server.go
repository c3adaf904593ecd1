package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportSource provides the most recently assembled report and the service's
// readiness state.
type ReportSource interface {
	sharedobs.ReadinessChecker
	Latest() (domain.FloodOperationsReport, bool)
}

// Server exposes health, readiness, metrics, and flood status JSON endpoints.
type Server struct {
	httpServer *http.Server
	source     ReportSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server serving the latest flood status report.
func NewServer(addr string, source ReportSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(source))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/lake-levels", s.handleLakeLevels)
	mux.HandleFunc("GET /api/river-conditions", s.handleRiverConditions)
	mux.HandleFunc("GET /api/floodgate-operations", s.handleFloodgateOperations)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.source.Latest()
	if !ok {
		writeNoReport(w)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLakeLevels(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.source.Latest()
	if !ok {
		writeNoReport(w)
		return
	}
	writeJSON(w, http.StatusOK, report.LakeLevels)
}

func (s *Server) handleRiverConditions(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.source.Latest()
	if !ok {
		writeNoReport(w)
		return
	}
	writeJSON(w, http.StatusOK, report.RiverConditions)
}

func (s *Server) handleFloodgateOperations(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.source.Latest()
	if !ok {
		writeNoReport(w)
		return
	}
	writeJSON(w, http.StatusOK, report.FloodgateOperations)
}

func writeNoReport(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": "no report available yet",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
