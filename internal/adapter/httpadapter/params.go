package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

// statusError carries an HTTP status chosen while parsing a request.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &statusError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// parseQuery reads lat, lon, radius, services, open_now, and near. Explicit
// coordinates take precedence over near.
func (s *Server) parseQuery(ctx context.Context, v url.Values) (domain.Query, error) {
	var q domain.Query

	loc, err := s.parseLocation(ctx, v)
	if err != nil {
		return q, err
	}
	q.Location = loc

	if q.Radius, err = parsePositive(v, "radius"); err != nil {
		return q, err
	}
	if q.Services, err = parseServices(v.Get("services")); err != nil {
		return q, err
	}
	if q.OpenNow, err = parseBool(v, "open_now"); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) parseLocation(ctx context.Context, v url.Values) (*domain.Coordinates, error) {
	latStr, lonStr := v.Get("lat"), v.Get("lon")
	if latStr != "" || lonStr != "" {
		if latStr == "" || lonStr == "" {
			return nil, badRequest("lat and lon must be given together")
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, badRequest("invalid lat %q", latStr)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return nil, badRequest("invalid lon %q", lonStr)
		}
		c := domain.Coordinates{Lat: lat, Lon: lon}
		if !c.Valid() {
			return nil, badRequest("coordinates out of range")
		}
		return &c, nil
	}

	near := strings.TrimSpace(v.Get("near"))
	if near == "" {
		return nil, nil
	}
	if s.deps.Geocoder == nil {
		return nil, badRequest("address search is not enabled")
	}
	res, err := s.deps.Geocoder.ForwardGeocode(ctx, near)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", near, err)
	}
	if res == (domain.GeocodingResult{}) {
		return nil, fmt.Errorf("address %q: %w", near, domain.ErrNotFound)
	}
	return &domain.Coordinates{Lat: res.Lat, Lon: res.Lon}, nil
}

// parseBounds returns nil when no edge is given and an error when only some are.
func parseBounds(v url.Values) (*domain.Bounds, error) {
	keys := []string{"north", "south", "east", "west"}
	var vals [4]float64
	given := 0
	for i, k := range keys {
		raw := v.Get(k)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, badRequest("invalid %s %q", k, raw)
		}
		vals[i] = f
		given++
	}
	switch given {
	case 0:
		return nil, nil
	case len(keys):
	default:
		return nil, badRequest("north, south, east and west must be given together")
	}
	b := domain.Bounds{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}
	if b.North < b.South {
		return nil, badRequest("north must not be below south")
	}
	return &b, nil
}

func parseServices(raw string) ([]domain.Service, error) {
	if raw == "" {
		return nil, nil
	}
	var out []domain.Service
	for _, part := range strings.Split(raw, ",") {
		name := domain.Service(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !name.Valid() {
			return nil, badRequest("unknown service %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

func parseBool(v url.Values, key string) (bool, error) {
	raw := v.Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest("invalid %s %q", key, raw)
	}
	return b, nil
}

// parsePositive returns 0 when key is absent.
func parsePositive(v url.Values, key string) (float64, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, badRequest("invalid %s %q", key, raw)
	}
	return f, nil
}

func parseBattery(v url.Values) (*domain.Battery, error) {
	raw := v.Get("battery")
	if raw == "" {
		return nil, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 100 {
		return nil, badRequest("invalid battery %q", raw)
	}
	charging, err := parseBool(v, "charging")
	if err != nil {
		return nil, err
	}
	return &domain.Battery{Level: level, Charging: charging}, nil
}

// errorStatus maps an error to its HTTP status code.
func errorStatus(err error) int {
	var se *statusError
	switch {
	case errors.As(err, &se):
		return se.status
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
