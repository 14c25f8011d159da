package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RawEvent represents an unprocessed message from the status feed topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// StatusUpdate is an operator report on a hub's current state. Nil fields
// leave the hub's existing value untouched.
type StatusUpdate struct {
	HubID        string    `json:"hub_id"`
	Status       HubStatus `json:"open_state"`
	Services     []Service `json:"services_active,omitempty"`
	Notes        *string   `json:"notes_public,omitempty"`
	HoursToday   *string   `json:"hours_today,omitempty"`
	TemperatureF *float64  `json:"temperature_f,omitempty"`
	LastVerified time.Time `json:"last_verified"`
}

// Validate checks the update against the status and service vocabularies.
func (u StatusUpdate) Validate() error {
	if strings.TrimSpace(u.HubID) == "" {
		return errors.New("hub_id is required")
	}
	if !u.Status.Valid() {
		return fmt.Errorf("unknown open_state %q", u.Status)
	}
	for _, s := range u.Services {
		if !s.Valid() {
			return fmt.Errorf("unknown service %q", s)
		}
	}
	return nil
}

// ParseStatusUpdate decodes and validates a feed message. A missing
// last_verified falls back to the message timestamp.
func ParseStatusUpdate(raw RawEvent) (StatusUpdate, error) {
	var u StatusUpdate
	if err := json.Unmarshal(raw.Value, &u); err != nil {
		return StatusUpdate{}, fmt.Errorf("parse status update: %w", err)
	}
	if u.HubID == "" && len(raw.Key) > 0 {
		u.HubID = string(raw.Key)
	}
	if err := u.Validate(); err != nil {
		return StatusUpdate{}, fmt.Errorf("invalid status update: %w", err)
	}
	if u.LastVerified.IsZero() {
		u.LastVerified = raw.Timestamp
	}
	return u, nil
}

// Apply returns a copy of h with the update's fields written over it.
// Services are replaced only when the update lists them.
func (u StatusUpdate) Apply(h Hub) Hub {
	h.Status = u.Status
	if u.Services != nil {
		h.Services = append([]Service(nil), u.Services...)
	}
	if u.Notes != nil {
		h.Notes = *u.Notes
	}
	if u.HoursToday != nil {
		h.HoursToday = *u.HoursToday
	}
	if u.TemperatureF != nil {
		t := *u.TemperatureF
		h.TemperatureF = &t
	}
	if !u.LastVerified.IsZero() {
		h.LastVerified = u.LastVerified
	}
	return h
}
