package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/dataset"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/pipeline"
	"github.com/couchcryptid/crime-forecast-dashboard/internal/render"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Dashboard runs the pipeline for one set of control values.
type Dashboard interface {
	ReadinessChecker
	Run(ctx context.Context, params pipeline.Params) (*pipeline.Result, error)
}

// Server serves the dashboard page, its charts and exports, plus health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard routes and
// /healthz, /readyz, and /metrics.
func NewServer(addr string, dashboard Dashboard, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: dashboard,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /charts/{name}", s.handleChart)
	mux.HandleFunc("GET /export.xlsx", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(dashboard))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r.URL.Query())
	if err != nil {
		s.writePage(w, http.StatusBadRequest, errorPage(http.StatusBadRequest, err))
		return
	}

	res, err := s.dashboard.Run(r.Context(), params)
	if err != nil {
		status := s.statusFor(err)
		s.writePage(w, status, errorPage(status, err))
		return
	}
	s.writePage(w, http.StatusOK, newPageData(res))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := render.ChartName(r.PathValue("name"))

	params, err := parseParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.dashboard.Run(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), s.statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := render.WriteChart(&buf, res, name); err != nil {
		if errors.Is(err, render.ErrUnknownChart) || errors.Is(err, render.ErrChartUnavailable) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.logger.Error("chart rendering failed", "chart", name, "run_id", res.RunID, "error", err)
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.dashboard.Run(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), s.statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := render.WriteWorkbook(&buf, res); err != nil {
		s.logger.Error("workbook export failed", "run_id", res.RunID, "error", err)
		http.Error(w, "workbook export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="forecast-%s.xlsx"`, res.RunID))
	w.Write(buf.Bytes()) //nolint:errcheck // client may have gone away
}

// statusFor maps a pipeline error to an HTTP status and logs server-side failures.
func (s *Server) statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidHorizon),
		errors.Is(err, pipeline.ErrUnknownRegion),
		errors.Is(err, pipeline.ErrUnknownCategory):
		return http.StatusBadRequest
	}

	var loadErr *dataset.LoadError
	if errors.As(err, &loadErr) {
		s.logger.Error("dataset unavailable", "source", loadErr.Source, "error", loadErr.Err)
	} else {
		s.logger.Error("pipeline run failed", "error", err)
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
