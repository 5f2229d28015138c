package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-sounding-service/internal/adapter/plot"
	"github.com/couchcryptid/storm-sounding-service/internal/domain"
	"github.com/couchcryptid/storm-sounding-service/internal/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SoundingAnalyzer produces a diagnosed report for a station and time.
type SoundingAnalyzer interface {
	Analyze(ctx context.Context, station, ts string) (domain.Report, error)
}

// Server exposes the sounding endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	analyzer   SoundingAnalyzer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /v1/soundings/{station}/{time} routes.
func NewServer(addr string, analyzer SoundingAnalyzer, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/soundings/{station}/{time}", s.handleSounding)

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

var contentTypes = map[string]string{
	"text": "text/plain; charset=utf-8",
	"json": "application/json",
	"png":  "image/png",
	"svg":  "image/svg+xml",
}

func (s *Server) handleSounding(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "text"
	}
	if _, ok := contentTypes[format]; !ok {
		writeError(w, http.StatusBadRequest, "unsupported format "+format)
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), r.PathValue("station"), r.PathValue("time"))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("sounding request failed", "path", r.URL.Path, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	if format == "json" {
		sharedobs.WriteJSON(w, http.StatusOK, report)
		return
	}

	var buf bytes.Buffer
	switch format {
	case "text":
		err = render.Report(&buf, report)
	default:
		title := report.Station + " " + report.ObservedAt.Format("2006-01-02 15Z")
		err = plot.Write(&buf, format, title, report.Sounding)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, plot.ErrNothingToPlot) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// statusFor maps analysis errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoRecords):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
