package domain

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// DefaultRadiusMiles is the search radius applied when a query has a
// location but no explicit radius.
const DefaultRadiusMiles = 50.0

// Query holds the parameters accepted by the hub data access layer.
type Query struct {
	Location *Coordinates
	Radius   float64 // miles; zero means DefaultRadiusMiles when Location is set
	Services []Service
	OpenNow  bool
}

// EffectiveRadius returns the radius to apply, defaulting when unset.
func (q Query) EffectiveRadius() float64 {
	if q.Radius > 0 {
		return q.Radius
	}
	return DefaultRadiusMiles
}

// Params encodes q as request parameters: lat, lon, radius, services,
// open_now. Absent fields are omitted.
func (q Query) Params() url.Values {
	p := url.Values{}
	if q.Location != nil {
		p.Set("lat", strconv.FormatFloat(q.Location.Lat, 'f', -1, 64))
		p.Set("lon", strconv.FormatFloat(q.Location.Lon, 'f', -1, 64))
		p.Set("radius", strconv.FormatFloat(q.EffectiveRadius(), 'f', -1, 64))
	}
	if len(q.Services) > 0 {
		names := make([]string, len(q.Services))
		for i, s := range q.Services {
			names[i] = string(s)
		}
		p.Set("services", strings.Join(names, ","))
	}
	if q.OpenNow {
		p.Set("open_now", "true")
	}
	return p
}

// HubSource provides the full candidate set of hubs and alerts. Sources may
// narrow results using the query; callers still apply every query predicate.
type HubSource interface {
	ListHubs(ctx context.Context, q Query) ([]Hub, error)
	GetHub(ctx context.Context, id string) (Hub, error)
	ListAlerts(ctx context.Context) ([]Alert, error)
}

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves a free-text address to coordinates. A zero-value result
// with a nil error means no match.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, address string) (GeocodingResult, error)
}
