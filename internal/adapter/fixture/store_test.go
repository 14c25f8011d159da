package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

func TestEmbedded_IsValid(t *testing.T) {
	doc := Embedded()

	require.NoError(t, doc.Validate())
	assert.Len(t, doc.Hubs, 6)
	assert.Len(t, doc.Alerts, 1)
	assert.Equal(t, "hub-001", doc.Hubs[0].ID)
	assert.Equal(t, domain.StatusOpen, doc.Hubs[0].Status)
	require.NotNil(t, doc.Hubs[0].TemperatureF)
	assert.InDelta(t, 78, *doc.Hubs[0].TemperatureF, 0)
	assert.Nil(t, doc.Hubs[3].TemperatureF)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubs.json")
	data := `{"hubs":[{"id":"h1","name":"Library","lat":30.1,"lon":-97.7,"open_state":"open"}],"alerts":[]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, doc.Hubs, 1)
	assert.Equal(t, "Library", doc.Hubs[0].Name)
}

func TestReadFile_EmptyPathUsesEmbedded(t *testing.T) {
	doc, err := ReadFile("")
	require.NoError(t, err)
	assert.Len(t, doc.Hubs, 6)
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read fixture")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode fixture")
}

func TestDocument_Validate(t *testing.T) {
	doc := Document{
		Hubs: []domain.Hub{
			{ID: "a", Name: "A", Lat: 29.7, Lon: -95.3, Status: domain.StatusOpen},
			{ID: "a", Name: "", Lat: 120, Lon: -95.3, Status: "busy", Services: []domain.Service{"sauna"}},
		},
		Alerts: []domain.Alert{{ID: "", Severity: "severe"}},
	}

	err := doc.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "coordinates out of range")
	assert.Contains(t, msg, `unknown open_state "busy"`)
	assert.Contains(t, msg, `unknown service "sauna"`)
	assert.Contains(t, msg, "alert 0: id is required")
	assert.Contains(t, msg, `unknown severity "severe"`)
}

func TestStore_Reads(t *testing.T) {
	store := NewStore(Embedded())
	ctx := context.Background()

	hubs, err := store.ListHubs(ctx, domain.Query{OpenNow: true})
	require.NoError(t, err)
	assert.Len(t, hubs, 6, "the store returns the full candidate set")

	hub, err := store.GetHub(ctx, "hub-005")
	require.NoError(t, err)
	assert.Equal(t, "Kashmere Multi-Service Center", hub.Name)

	_, err = store.GetHub(ctx, "hub-999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	alerts, err := store.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestStore_ListHubsReturnsCopy(t *testing.T) {
	store := NewStore(Embedded())

	hubs, err := store.ListHubs(context.Background(), domain.Query{})
	require.NoError(t, err)
	hubs[0].Name = "mutated"

	hub, err := store.GetHub(context.Background(), "hub-001")
	require.NoError(t, err)
	assert.Equal(t, "George R. Brown Convention Center", hub.Name)
}

func TestStore_ApplyUpdates(t *testing.T) {
	store := NewStore(Embedded())
	notes := "Reopened with generator power."
	verified := time.Date(2024, 7, 15, 15, 0, 0, 0, time.UTC)

	applied, unknown := store.ApplyUpdates([]domain.StatusUpdate{
		{HubID: "hub-004", Status: domain.StatusOpen, Services: []domain.Service{domain.ServiceCharging}, Notes: &notes, LastVerified: verified},
		{HubID: "hub-404", Status: domain.StatusClosed},
	})

	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{"hub-404"}, unknown)

	hub, err := store.GetHub(context.Background(), "hub-004")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, hub.Status)
	assert.Equal(t, []domain.Service{domain.ServiceCharging}, hub.Services)
	assert.Equal(t, notes, hub.Notes)
	assert.Equal(t, verified, hub.LastVerified)
	assert.Equal(t, "(713) 645-1475", hub.Contact, "fields absent from the update are kept")
	assert.Equal(t, 6, store.Len())
}

func TestStore_SimulatedDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewStore(Embedded(), WithDelay(200*time.Millisecond), WithClock(clock))

	done := make(chan error, 1)
	go func() {
		_, err := store.ListHubs(context.Background(), domain.Query{})
		done <- err
	}()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	select {
	case <-done:
		t.Fatal("read returned before the delay elapsed")
	default:
	}

	clock.Advance(200 * time.Millisecond)
	require.NoError(t, <-done)
}

func TestStore_SimulatedDelayHonoursCancellation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewStore(Embedded(), WithDelay(time.Second), WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetHub(ctx, "hub-001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
