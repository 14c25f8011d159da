package domain

import "math"

// EarthRadiusMiles is the mean earth radius used for distance calculations.
const EarthRadiusMiles = 3959.0

// Distance returns the great-circle distance in miles between two points
// using the haversine formula.
func Distance(a, b Coordinates) float64 {
	if a == b {
		return 0
	}
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// AttachDistances returns copies of hubs with Distance measured from loc.
func AttachDistances(hubs []Hub, loc Coordinates) []Hub {
	out := make([]Hub, len(hubs))
	for i, h := range hubs {
		d := Distance(loc, h.Coordinates())
		h.Distance = &d
		out[i] = h
	}
	return out
}

// ClearDistances returns copies of hubs without a Distance. A distance is only
// meaningful relative to a caller-supplied location.
func ClearDistances(hubs []Hub) []Hub {
	out := make([]Hub, len(hubs))
	for i, h := range hubs {
		h.Distance = nil
		out[i] = h
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
