package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// Service is the poller as seen by the API.
type Service interface {
	sharedobs.ReadinessChecker
	Snapshot() *domain.Snapshot
	LastError() (time.Time, error)
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// Server exposes health, readiness, metrics and the region state API.
type Server struct {
	httpServer *http.Server
	svc        Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health routes and /api/v1.
func NewServer(addr string, svc Service, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(svc))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/regions", s.handleRegions)
		r.Get("/regions/{region}", s.handleRegion)
		r.Get("/alerts", s.handleAlerts)
		r.Post("/refresh", s.handleRefresh)
	})

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

type regionsResponse struct {
	UpdatedAt   *time.Time           `json:"updated_at"`
	CycleID     string               `json:"cycle_id,omitempty"`
	LastError   string               `json:"last_error,omitempty"`
	LastErrorAt *time.Time           `json:"last_error_at,omitempty"`
	States      []domain.RegionState `json:"states"`
}

type alertsResponse struct {
	UpdatedAt *time.Time     `json:"updated_at"`
	ParsedAt  *time.Time     `json:"parsed_at"`
	Count     int            `json:"count"`
	Alerts    []domain.Alert `json:"alerts"`
}

func (s *Server) regions(snap *domain.Snapshot) regionsResponse {
	resp := regionsResponse{States: []domain.RegionState{}}
	if snap != nil {
		resp.UpdatedAt = &snap.UpdatedAt
		resp.CycleID = snap.CycleID
		resp.States = snap.States
	}
	if at, err := s.svc.LastError(); err != nil {
		resp.LastError = err.Error()
		resp.LastErrorAt = &at
	}
	return resp
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.regions(s.svc.Snapshot()))
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "region")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	snap := s.svc.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no feed snapshot yet")
		return
	}
	key := domain.FoldKey(name)
	for _, st := range snap.States {
		if domain.FoldKey(st.Region) == key {
			writeJSON(w, http.StatusOK, st)
			return
		}
	}
	writeError(w, http.StatusNotFound, "region not configured: "+name)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "active must be a boolean")
			return
		}
		activeOnly = b
	}

	resp := alertsResponse{Alerts: []domain.Alert{}}
	if snap := s.svc.Snapshot(); snap != nil {
		resp.UpdatedAt = &snap.UpdatedAt
		resp.ParsedAt = &snap.Result.ParsedAt
		resp.Alerts = snap.Result.Alerts
		if activeOnly {
			resp.Alerts = snap.Result.ActiveAlerts
		}
	}
	resp.Count = len(resp.Alerts)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("manual refresh failed", "error", err)
		resp := s.regions(s.svc.Snapshot())
		resp.LastError = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, s.regions(snap))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
