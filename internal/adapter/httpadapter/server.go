package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/resilience-hubs/internal/cache"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
	"github.com/couchcryptid/resilience-hubs/internal/hubs"
)

// Directory is the data access surface the API serves.
type Directory interface {
	Query(ctx context.Context, q domain.Query) (domain.Envelope[[]domain.Hub], error)
	Get(ctx context.Context, id string) (domain.Envelope[domain.Hub], error)
	GeoJSON(ctx context.Context, bounds *domain.Bounds) (domain.FeatureCollection, error)
	Alerts(ctx context.Context) domain.Envelope[[]domain.Alert]
	Directory(ctx context.Context, loc *domain.Coordinates, f domain.Filter) (hubs.DirectoryView, error)
	Refresh()
	CacheStatus() cache.Status
}

// Deps are the collaborators behind the API routes. Geocoder is optional;
// without it the near parameter is rejected.
type Deps struct {
	Hubs     Directory
	Ready    sharedobs.ReadinessChecker
	Geocoder domain.Geocoder
	Context  domain.ContextProvider
}

// Server exposes health, readiness, metrics, and the hub directory API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the operational and /api routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.Context == nil {
		deps.Context = domain.NewSeasonalContext(nil)
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/hubs", s.handleHubs)
	mux.HandleFunc("GET /api/hubs/{id}", s.handleHub)
	mux.HandleFunc("GET /api/hubs.geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /api/directory", s.handleDirectory)
	mux.HandleFunc("GET /api/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/context", s.handleContext)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/cache", s.handleCache)

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

// writeJSON encodes v, defaulting the content type to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
