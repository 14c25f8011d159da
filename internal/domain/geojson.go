package domain

// Bounds is a map viewport in decimal degrees.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether c lies inside the box. Boxes whose West edge is
// east of their East edge wrap the antimeridian.
func (b Bounds) Contains(c Coordinates) bool {
	if c.Lat < b.South || c.Lat > b.North {
		return false
	}
	if b.West <= b.East {
		return c.Lon >= b.West && c.Lon <= b.East
	}
	return c.Lon >= b.West || c.Lon <= b.East
}

// FeatureCollection is a GeoJSON FeatureCollection of hub points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON Point feature carrying a hub's public fields.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   PointGeometry     `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// PointGeometry holds coordinates in GeoJSON [lon, lat] order.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties is the subset of hub fields exported to map clients.
type FeatureProperties struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      HubStatus `json:"open_state"`
	Services    []Service `json:"services_active"`
	Accessible  bool      `json:"accessible"`
	PetFriendly bool      `json:"pet_friendly"`
}

// ToFeatureCollection converts hubs to GeoJSON. A nil bounds keeps every hub.
func ToFeatureCollection(hubs []Hub, bounds *Bounds) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(hubs))}
	for _, h := range hubs {
		if bounds != nil && !bounds.Contains(h.Coordinates()) {
			continue
		}
		services := h.Services
		if services == nil {
			services = []Service{}
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{h.Lon, h.Lat},
			},
			Properties: FeatureProperties{
				ID:          h.ID,
				Name:        h.Name,
				Status:      h.Status,
				Services:    services,
				Accessible:  h.Accessible,
				PetFriendly: h.PetFriendly,
			},
		})
	}
	return fc
}
