// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/labviz/internal/adapters/repository"
	"github.com/okian/labviz/internal/domain/layout"
	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LabDependencies
	RenderDependencies
}

// LabDependencies reads loaded datasets.
type LabDependencies interface {
	Labs(ctx context.Context) []model.Summary
	Dataset(ctx context.Context, name string) (*model.Dataset, error)
	Groups(ctx context.Context, name, field string) ([]types.GroupSize, error)
	Reload(ctx context.Context, name string) (model.Summary, error)
}

// RenderDependencies lays out and draws datasets.
type RenderDependencies interface {
	Layout(ctx context.Context, name string, width float64) (layout.Layout, error)
	Chart(ctx context.Context, name string, width float64, section string) (model.RenderResult, error)
	Trend(ctx context.Context, name, group string, width int) ([]byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	labsHandler   *LabsHandler
	chartHandler  *ChartHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRecords int) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		labsHandler:   NewLabsHandler(deps, maxRecords),
		chartHandler:  NewChartHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /labs", MetricsMiddleware(s.labsHandler.HandleList, "labs"))
	mux.HandleFunc("GET /labs/{name}/records", MetricsMiddleware(s.labsHandler.HandleRecords, "records"))
	mux.HandleFunc("GET /labs/{name}/groups", MetricsMiddleware(s.labsHandler.HandleGroups, "groups"))
	mux.HandleFunc("POST /labs/{name}/reload", MetricsMiddleware(s.labsHandler.HandleReload, "reload"))
	mux.HandleFunc("GET /labs/{name}/layout", MetricsMiddleware(s.chartHandler.HandleLayout, "layout"))
	mux.HandleFunc("GET /labs/{name}/chart.svg", MetricsMiddleware(s.chartHandler.HandleChart, "chart"))
	mux.HandleFunc("GET /labs/{name}/trend.svg", MetricsMiddleware(s.chartHandler.HandleTrend, "trend"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeSVG(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeUpstreamError translates service errors: unknown labs are 404,
// caller mistakes 400, everything else 500.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrap(op, err))
	case errors.Is(err, types.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
	}
}
