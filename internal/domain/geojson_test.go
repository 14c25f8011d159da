package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFeatureCollection(t *testing.T) {
	hubs := []Hub{
		{ID: "hub-001", Name: "Convention Center", Lat: 29.7499, Lon: -95.3590, Status: StatusOpen,
			Services: []Service{ServiceCooling}, Accessible: true},
		{ID: "hub-004", Name: "Sunnyside", Lat: 29.6842, Lon: -95.3089, Status: StatusClosed},
	}

	fc := ToFeatureCollection(hubs, nil)

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, [2]float64{-95.3590, 29.7499}, f.Geometry.Coordinates, "GeoJSON uses [lon, lat]")
	assert.Equal(t, "hub-001", f.Properties.ID)
	assert.Equal(t, StatusOpen, f.Properties.Status)
	assert.True(t, f.Properties.Accessible)

	assert.NotNil(t, fc.Features[1].Properties.Services, "empty services serialize as []")
}

func TestToFeatureCollection_Bounds(t *testing.T) {
	hubs := []Hub{
		{ID: "in", Lat: 29.75, Lon: -95.36},
		{ID: "north", Lat: 30.5, Lon: -95.36},
		{ID: "west", Lat: 29.75, Lon: -96.5},
	}
	bounds := &Bounds{North: 30, South: 29.5, East: -95, West: -96}

	fc := ToFeatureCollection(hubs, bounds)

	require.Len(t, fc.Features, 1)
	assert.Equal(t, "in", fc.Features[0].Properties.ID)
}

func TestBounds_ContainsAcrossAntimeridian(t *testing.T) {
	b := Bounds{North: 10, South: -10, East: -170, West: 170}

	assert.True(t, b.Contains(Coordinates{Lat: 0, Lon: 179}))
	assert.True(t, b.Contains(Coordinates{Lat: 0, Lon: -175}))
	assert.False(t, b.Contains(Coordinates{Lat: 0, Lon: 0}))
}

func TestFeatureCollection_JSONShape(t *testing.T) {
	fc := ToFeatureCollection([]Hub{{ID: "hub-001", Name: "Hub", Lat: 1, Lon: 2, Status: StatusOpen}}, nil)

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [2, 1]},
			"properties": {
				"id": "hub-001",
				"name": "Hub",
				"open_state": "open",
				"services_active": [],
				"accessible": false,
				"pet_friendly": false
			}
		}]
	}`, string(data))
}
