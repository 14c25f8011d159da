// Package postgres implements domain.HubSource on PostgreSQL through a pgx
// connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

//go:embed schema.sql
var schema string

// boxSlack widens the prefilter box by a hair (radians) so hubs on the exact
// radius survive floating point error.
const boxSlack = 1e-9

const hubColumns = `id, name, address, lat, lon, open_state, last_verified, services_active,
	accessible, pet_friendly, hours_today, hours_activation, languages, notes_public,
	transit, house_rules, contact_public, temperature_f`

// querier is the subset of *pgxpool.Pool used by Source.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Source reads hubs and alerts from the hubs and alerts tables.
type Source struct {
	db     querier
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Source, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection established")
	return &Source{db: pool, pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Source) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the hubs and alerts tables if they do not exist.
func (s *Source) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity for readiness.
func (s *Source) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// ListHubs narrows by open state, services and a bounding box around the
// query location. The exact radius is applied by the caller.
func (s *Source) ListHubs(ctx context.Context, q domain.Query) ([]domain.Hub, error) {
	sql, args := buildHubQuery(q)
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, unavailable("query hubs", err)
	}
	defer rows.Close()

	hubs := make([]domain.Hub, 0)
	for rows.Next() {
		h, err := scanHub(rows)
		if err != nil {
			s.logger.Warn("skipping unreadable hub row", "error", err)
			continue
		}
		hubs = append(hubs, h)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query hubs", err)
	}
	return hubs, nil
}

// GetHub returns a single hub. A missing row maps to domain.ErrNotFound.
func (s *Source) GetHub(ctx context.Context, id string) (domain.Hub, error) {
	row := s.db.QueryRow(ctx, "SELECT "+hubColumns+" FROM hubs WHERE id = $1", id)
	h, err := scanHub(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Hub{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hub{}, unavailable("get hub", err)
	}
	return h, nil
}

// ListAlerts returns every alert, newest first.
func (s *Source) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, severity, title, message, link, expires_at, created_at FROM alerts ORDER BY created_at DESC")
	if err != nil {
		return nil, unavailable("query alerts", err)
	}
	defer rows.Close()

	alerts := make([]domain.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, unavailable("scan alert", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query alerts", err)
	}
	return alerts, nil
}

// buildHubQuery renders the hub SELECT with positional arguments.
func buildHubQuery(q domain.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Location != nil {
		box := boundingBox(*q.Location, q.EffectiveRadius())
		where = append(where, fmt.Sprintf("lat BETWEEN %s AND %s", arg(box.minLat), arg(box.maxLat)))
		var lons []string
		for _, r := range box.lons {
			lons = append(lons, fmt.Sprintf("lon BETWEEN %s AND %s", arg(r[0]), arg(r[1])))
		}
		switch len(lons) {
		case 1:
			where = append(where, lons[0])
		case 2:
			where = append(where, "("+strings.Join(lons, " OR ")+")")
		}
	}
	if len(q.Services) > 0 {
		names := make([]string, len(q.Services))
		for i, svc := range q.Services {
			names[i] = string(svc)
		}
		where = append(where, "services_active @> "+arg(names))
	}
	if q.OpenNow {
		where = append(where, fmt.Sprintf("open_state IN (%s, %s)", arg(string(domain.StatusOpen)), arg(string(domain.StatusOpenLimited))))
	}

	sql := "SELECT " + hubColumns + " FROM hubs"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	return sql + " ORDER BY id", args
}

// geoBox is the latitude band and longitude ranges enclosing a search circle.
// No ranges means every longitude; two ranges means the box crosses the
// antimeridian.
type geoBox struct {
	minLat, maxLat float64
	lons           [][2]float64
}

// boundingBox returns the smallest lat/lon box containing every point within
// radius miles of loc on the sphere used by domain.Distance.
func boundingBox(loc domain.Coordinates, radius float64) geoBox {
	r := radius/domain.EarthRadiusMiles + boxSlack
	lat := loc.Lat * math.Pi / 180
	lon := loc.Lon * math.Pi / 180

	minLat, maxLat := lat-r, lat+r
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		// A pole lies inside the circle.
		return geoBox{
			minLat: math.Max(minLat, -math.Pi/2) * 180 / math.Pi,
			maxLat: math.Min(maxLat, math.Pi/2) * 180 / math.Pi,
		}
	}

	dLon := math.Asin(math.Sin(r) / math.Cos(lat))
	west, east := (lon-dLon)*180/math.Pi, (lon+dLon)*180/math.Pi
	box := geoBox{minLat: minLat * 180 / math.Pi, maxLat: maxLat * 180 / math.Pi}
	switch {
	case west < -180:
		box.lons = [][2]float64{{west + 360, 180}, {-180, east}}
	case east > 180:
		box.lons = [][2]float64{{west, 180}, {-180, east - 360}}
	default:
		box.lons = [][2]float64{{west, east}}
	}
	return box
}

func scanHub(row pgx.Row) (domain.Hub, error) {
	var (
		h        domain.Hub
		status   string
		services []string
	)
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.Lat,
		&h.Lon,
		&status,
		&h.LastVerified,
		&services,
		&h.Accessible,
		&h.PetFriendly,
		&h.HoursToday,
		&h.HoursActivation,
		&h.Languages,
		&h.Notes,
		&h.Transit,
		&h.HouseRules,
		&h.Contact,
		&h.TemperatureF,
	)
	if err != nil {
		return domain.Hub{}, err
	}
	h.Status = domain.HubStatus(status)
	h.Services = make([]domain.Service, len(services))
	for i, svc := range services {
		h.Services[i] = domain.Service(svc)
	}
	return h, nil
}

func scanAlert(row pgx.Row) (domain.Alert, error) {
	var (
		a        domain.Alert
		severity string
		link     *string
	)
	if err := row.Scan(&a.ID, &severity, &a.Title, &a.Message, &link, &a.ExpiresAt, &a.CreatedAt); err != nil {
		return domain.Alert{}, err
	}
	a.Severity = domain.AlertSeverity(severity)
	if link != nil {
		a.Link = *link
	}
	return a, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceUnavailable, err)
}
