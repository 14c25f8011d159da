// Package fixture implements an in-memory hub source loaded from a JSON
// document. It backs local development and receives live status updates
// from the status feed.
package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

//go:embed hubs.json
var embedded []byte

// Document is the on-disk fixture format.
type Document struct {
	Hubs   []domain.Hub   `json:"hubs"`
	Alerts []domain.Alert `json:"alerts"`
}

// Parse decodes a fixture document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode fixture: %w", err)
	}
	return doc, nil
}

// Embedded returns the built-in Houston fixture.
func Embedded() Document {
	doc, err := Parse(embedded)
	if err != nil {
		panic(err)
	}
	return doc
}

// ReadFile loads a fixture document from path, or the embedded fixture when
// path is empty.
func ReadFile(path string) (Document, error) {
	if path == "" {
		return Embedded(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Parse(data)
}

// Validate reports every problem found in the document.
func (d Document) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(d.Hubs))
	for i, h := range d.Hubs {
		label := fmt.Sprintf("hub %d (%s)", i, h.ID)
		if h.ID == "" {
			errs = append(errs, fmt.Errorf("hub %d: id is required", i))
		} else if seen[h.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id", label))
		}
		seen[h.ID] = true
		if h.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", label))
		}
		if !h.Coordinates().Valid() {
			errs = append(errs, fmt.Errorf("%s: coordinates out of range (%f, %f)", label, h.Lat, h.Lon))
		}
		if !h.Status.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown open_state %q", label, h.Status))
		}
		for _, s := range h.Services {
			if !s.Valid() {
				errs = append(errs, fmt.Errorf("%s: unknown service %q", label, s))
			}
		}
	}
	for i, a := range d.Alerts {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("alert %d: id is required", i))
		}
		switch a.Severity {
		case domain.SeverityInfo, domain.SeverityWarning, domain.SeverityUrgent:
		default:
			errs = append(errs, fmt.Errorf("alert %d (%s): unknown severity %q", i, a.ID, a.Severity))
		}
	}
	return errors.Join(errs...)
}

// Option configures a Store.
type Option func(*Store)

// WithDelay makes every read wait d before answering.
func WithDelay(d time.Duration) Option {
	return func(s *Store) { s.delay = d }
}

// WithClock sets the clock used for the simulated delay.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Store is a mutable, concurrency-safe hub source.
type Store struct {
	mu     sync.RWMutex
	hubs   []domain.Hub
	alerts []domain.Alert

	delay time.Duration
	clock clockwork.Clock
}

// NewStore creates a store holding the document's hubs and alerts.
func NewStore(doc Document, opts ...Option) *Store {
	s := &Store{
		hubs:   slices.Clone(doc.Hubs),
		alerts: slices.Clone(doc.Alerts),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListHubs returns every hub. Query predicates are left to the caller.
func (s *Store) ListHubs(ctx context.Context, _ domain.Query) ([]domain.Hub, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.hubs), nil
}

// GetHub returns the hub with the given id.
func (s *Store) GetHub(ctx context.Context, id string) (domain.Hub, error) {
	if err := s.wait(ctx); err != nil {
		return domain.Hub{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.hubs[i], nil
	}
	return domain.Hub{}, domain.ErrNotFound
}

// ListAlerts returns every stored alert, expired or not.
func (s *Store) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.alerts), nil
}

// ApplyUpdates writes status updates over the stored hubs. It returns the
// number applied and the ids that matched no hub.
func (s *Store) ApplyUpdates(updates []domain.StatusUpdate) (applied int, unknown []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range updates {
		i := s.index(u.HubID)
		if i < 0 {
			unknown = append(unknown, u.HubID)
			continue
		}
		s.hubs[i] = u.Apply(s.hubs[i])
		applied++
	}
	return applied, unknown
}

// Len returns the number of stored hubs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hubs)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.hubs, func(h domain.Hub) bool { return h.ID == id })
}

func (s *Store) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("fixture read: %w", ctx.Err())
	case <-s.clock.After(s.delay):
		return nil
	}
}
