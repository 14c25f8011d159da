// Package hubs is the hub data access layer. It composes a hub source with the
// response cache and the distance calculator and returns uniform envelopes.
package hubs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/resilience-hubs/internal/cache"
	"github.com/couchcryptid/resilience-hubs/internal/domain"
	"github.com/couchcryptid/resilience-hubs/internal/observability"
)

// Cache paths, one per endpoint.
const (
	pathHubs    = "/hubs"
	pathGeoJSON = "/hubs.geojson"
	pathAlerts  = "/alerts"
)

// Operation labels for metrics.
const (
	opQuery   = "query"
	opGet     = "get"
	opGeoJSON = "geojson"
	opAlerts  = "alerts"
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Clock         clockwork.Clock
	TTL           time.Duration
	DefaultRadius float64
	Logger        *slog.Logger
}

// Service answers hub queries, serving repeated requests from the cache.
type Service struct {
	source        domain.HubSource
	cache         *cache.Cache[any]
	clock         clockwork.Clock
	defaultRadius float64
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// DirectoryView is a ranked hub list with summary statistics.
type DirectoryView struct {
	Hubs        []domain.Hub  `json:"hubs"`
	Stats       domain.Stats  `json:"stats"`
	Filter      domain.Filter `json:"filter"`
	LastUpdated time.Time     `json:"last_updated"`
	NextUpdate  *time.Time    `json:"next_update,omitempty"`
}

// NewService creates a data access layer over source.
func NewService(source domain.HubSource, metrics *observability.Metrics, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.DefaultRadius <= 0 {
		opts.DefaultRadius = domain.DefaultRadiusMiles
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		source: source,
		cache: cache.New[any](opts.Clock, opts.TTL, func(result string) {
			metrics.CacheLookups.WithLabelValues(result).Inc()
		}),
		clock:         opts.Clock,
		defaultRadius: opts.DefaultRadius,
		metrics:       metrics,
		logger:        opts.Logger,
	}
}

// Query returns the hubs matching q. With a location, every hub carries its
// distance and hubs beyond the radius are dropped.
func (s *Service) Query(ctx context.Context, q domain.Query) (domain.Envelope[[]domain.Hub], error) {
	if q.Location != nil && q.Radius <= 0 {
		q.Radius = s.defaultRadius
	}

	key := cache.Key(pathHubs, q.Params())
	if v, ok := s.cache.Get(key); ok {
		if env, ok := v.(domain.Envelope[[]domain.Hub]); ok {
			s.metrics.Queries.WithLabelValues(opQuery, "success").Inc()
			return env, nil
		}
	}

	var hubs []domain.Hub
	gen := s.cache.Generation()
	err := s.observeSource(opQuery, func() error {
		var err error
		hubs, err = s.source.ListHubs(ctx, q)
		return err
	})
	if err != nil {
		s.metrics.Queries.WithLabelValues(opQuery, "error").Inc()
		return domain.Envelope[[]domain.Hub]{}, sourceError("failed to fetch hubs", err)
	}

	env := wrap(s, narrow(hubs, q))
	s.cache.PutIfCurrent(key, env, gen)
	s.metrics.Queries.WithLabelValues(opQuery, "success").Inc()
	return env, nil
}

// narrow applies the query predicates: radius, required services, open now.
// Sources may have narrowed already; reapplying is harmless. Distances are
// always recomputed here and dropped when the query has no location.
func narrow(hubs []domain.Hub, q domain.Query) []domain.Hub {
	f := domain.Filter{OpenNow: q.OpenNow, Services: q.Services}
	if q.Location == nil {
		return domain.FilterHubs(domain.ClearDistances(hubs), f)
	}
	hubs = domain.AttachDistances(hubs, *q.Location)
	radius := q.EffectiveRadius()
	f.MaxDistance = &radius
	return domain.FilterHubs(hubs, f)
}

// Get returns a single hub by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Envelope[domain.Hub], error) {
	key := cache.Key(pathHubs+"/"+url.PathEscape(id), nil)
	if v, ok := s.cache.Get(key); ok {
		if env, ok := v.(domain.Envelope[domain.Hub]); ok {
			s.metrics.Queries.WithLabelValues(opGet, "success").Inc()
			return env, nil
		}
	}

	var hub domain.Hub
	gen := s.cache.Generation()
	err := s.observeSource(opGet, func() error {
		var err error
		hub, err = s.source.GetHub(ctx, id)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		s.metrics.Queries.WithLabelValues(opGet, "not_found").Inc()
		return domain.Envelope[domain.Hub]{}, fmt.Errorf("hub %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		s.metrics.Queries.WithLabelValues(opGet, "error").Inc()
		return domain.Envelope[domain.Hub]{}, sourceError("failed to fetch hub", err)
	}

	hub.Distance = nil
	env := wrap(s, hub)
	s.cache.PutIfCurrent(key, env, gen)
	s.metrics.Queries.WithLabelValues(opGet, "success").Inc()
	return env, nil
}

// GeoJSON returns every hub as a GeoJSON FeatureCollection, optionally
// restricted to a bounding box.
func (s *Service) GeoJSON(ctx context.Context, bounds *domain.Bounds) (domain.FeatureCollection, error) {
	key := cache.Key(pathGeoJSON, boundsParams(bounds))
	if v, ok := s.cache.Get(key); ok {
		if fc, ok := v.(domain.FeatureCollection); ok {
			s.metrics.Queries.WithLabelValues(opGeoJSON, "success").Inc()
			return fc, nil
		}
	}

	var hubs []domain.Hub
	gen := s.cache.Generation()
	err := s.observeSource(opGeoJSON, func() error {
		var err error
		hubs, err = s.source.ListHubs(ctx, domain.Query{})
		return err
	})
	if err != nil {
		s.metrics.Queries.WithLabelValues(opGeoJSON, "error").Inc()
		return domain.FeatureCollection{}, sourceError("failed to fetch hubs", err)
	}

	fc := domain.ToFeatureCollection(hubs, bounds)
	s.cache.PutIfCurrent(key, fc, gen)
	s.metrics.Queries.WithLabelValues(opGeoJSON, "success").Inc()
	return fc, nil
}

// Alerts returns the active advisories. Source failures are logged and yield
// an empty, uncached list.
func (s *Service) Alerts(ctx context.Context) domain.Envelope[[]domain.Alert] {
	key := cache.Key(pathAlerts, nil)
	if v, ok := s.cache.Get(key); ok {
		if env, ok := v.(domain.Envelope[[]domain.Alert]); ok {
			s.metrics.Queries.WithLabelValues(opAlerts, "success").Inc()
			return env
		}
	}

	var alerts []domain.Alert
	gen := s.cache.Generation()
	err := s.observeSource(opAlerts, func() error {
		var err error
		alerts, err = s.source.ListAlerts(ctx)
		return err
	})
	if err != nil {
		s.logger.Warn("alerts unavailable, serving empty list", "error", err)
		s.metrics.Queries.WithLabelValues(opAlerts, "error").Inc()
		return wrap(s, []domain.Alert{})
	}

	now := s.clock.Now()
	active := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if !a.Expired(now) {
			active = append(active, a)
		}
	}

	env := wrap(s, active)
	s.cache.PutIfCurrent(key, env, gen)
	s.metrics.Queries.WithLabelValues(opAlerts, "success").Inc()
	return env
}

// Directory runs the full directory flow: query by location and filter, then
// apply the remaining predicates, rank, and summarize.
func (s *Service) Directory(ctx context.Context, loc *domain.Coordinates, f domain.Filter) (DirectoryView, error) {
	q := domain.Query{Location: loc, Services: f.Services, OpenNow: f.OpenNow}
	if f.MaxDistance != nil {
		q.Radius = *f.MaxDistance
	}

	env, err := s.Query(ctx, q)
	if err != nil {
		return DirectoryView{}, err
	}

	ranked := domain.SortHubs(domain.FilterHubs(env.Data, f))
	return DirectoryView{
		Hubs:        ranked,
		Stats:       domain.Summarize(ranked, loc != nil),
		Filter:      f,
		LastUpdated: env.LastUpdated,
		NextUpdate:  env.NextUpdate,
	}, nil
}

// Refresh discards every cached response.
func (s *Service) Refresh() {
	s.cache.Clear()
	s.logger.Debug("response cache cleared")
}

// CacheStatus reports the cached keys.
func (s *Service) CacheStatus() cache.Status {
	return s.cache.Status()
}

// wrap stamps data with the capture time and the next refresh hint.
func wrap[T any](s *Service, data T) domain.Envelope[T] {
	now := s.clock.Now()
	next := now.Add(s.cache.TTL())
	return domain.Envelope[T]{Data: data, LastUpdated: now, NextUpdate: &next}
}

// observeSource times a source call and records its outcome.
func (s *Service) observeSource(operation string, call func() error) error {
	start := s.clock.Now()
	err := call()
	s.metrics.SourceDuration.WithLabelValues(operation).Observe(s.clock.Since(start).Seconds())

	outcome := "success"
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		outcome = "error"
	}
	s.metrics.SourceRequests.WithLabelValues(operation, outcome).Inc()
	return err
}

// sourceError wraps err so that it always matches ErrSourceUnavailable.
func sourceError(msg string, err error) error {
	if errors.Is(err, domain.ErrSourceUnavailable) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrSourceUnavailable, err)
}

func boundsParams(b *domain.Bounds) url.Values {
	if b == nil {
		return nil
	}
	format := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	return url.Values{
		"north": {format(b.North)},
		"south": {format(b.South)},
		"east":  {format(b.East)},
		"west":  {format(b.West)},
	}
}
