package domain

import (
	"slices"
	"time"
)

// HubStatus is the operating state of a hub.
type HubStatus string

const (
	StatusOpen        HubStatus = "open"
	StatusAtCapacity  HubStatus = "at_capacity"
	StatusOpenLimited HubStatus = "open_limited"
	StatusClosed      HubStatus = "closed"
	StatusPlannedOpen HubStatus = "planned_open"
)

// Valid reports whether s is one of the known statuses.
func (s HubStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusAtCapacity, StatusOpenLimited, StatusClosed, StatusPlannedOpen:
		return true
	default:
		return false
	}
}

// Accepting reports whether the hub is taking visitors right now.
func (s HubStatus) Accepting() bool {
	return s == StatusOpen || s == StatusOpenLimited
}

// Service is an amenity a hub can offer.
type Service string

const (
	ServiceCooling   Service = "cooling_room"
	ServiceHeating   Service = "heating_room"
	ServiceCharging  Service = "device_charging"
	ServiceWifi      Service = "wifi"
	ServiceWater     Service = "potable_water"
	ServiceRestrooms Service = "restrooms"
	ServiceMedical   Service = "medical_assistance"
	ServicePetRelief Service = "pet_relief"
	ServiceFood      Service = "food_distribution"
)

// Services lists the full service vocabulary in display order.
var Services = []Service{
	ServiceCooling,
	ServiceHeating,
	ServiceCharging,
	ServiceWifi,
	ServiceWater,
	ServiceRestrooms,
	ServiceMedical,
	ServicePetRelief,
	ServiceFood,
}

// Valid reports whether s belongs to the service vocabulary.
func (s Service) Valid() bool {
	return slices.Contains(Services, s)
}

// Coordinates is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair lies within the latitude/longitude ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Hub is a single resilience hub record.
type Hub struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	Status          HubStatus `json:"open_state"`
	LastVerified    time.Time `json:"last_verified"`
	Services        []Service `json:"services_active"`
	Accessible      bool      `json:"accessible"`
	PetFriendly     bool      `json:"pet_friendly"`
	HoursToday      string    `json:"hours_today"`
	HoursActivation string    `json:"hours_activation"`
	Languages       []string  `json:"languages"`
	Notes           string    `json:"notes_public"`
	Transit         string    `json:"transit"`
	HouseRules      string    `json:"house_rules"`
	Contact         string    `json:"contact_public"`
	TemperatureF    *float64  `json:"temperature_f,omitempty"`

	// Distance in miles from the querying user. Set only when the query
	// carried a location.
	Distance *float64 `json:"distance,omitempty"`
}

// Coordinates returns the hub's position.
func (h Hub) Coordinates() Coordinates {
	return Coordinates{Lat: h.Lat, Lon: h.Lon}
}

// HasServices reports whether the hub offers every service in required.
func (h Hub) HasServices(required []Service) bool {
	for _, s := range required {
		if !slices.Contains(h.Services, s) {
			return false
		}
	}
	return true
}

// AlertSeverity grades an advisory.
type AlertSeverity string

const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeverityUrgent  AlertSeverity = "urgent"
)

// Alert is a public advisory shown above the directory.
type Alert struct {
	ID        string        `json:"id"`
	Severity  AlertSeverity `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Link      string        `json:"link,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Expired reports whether the alert has an expiry at or before now.
func (a Alert) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// Envelope wraps every data access result.
type Envelope[T any] struct {
	Data        T          `json:"data"`
	LastUpdated time.Time  `json:"last_updated"`
	NextUpdate  *time.Time `json:"next_update,omitempty"`
}
