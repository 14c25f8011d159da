package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_ListHubs_SendsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hubs", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "29.7604", q.Get("lat"))
		assert.Equal(t, "-95.3698", q.Get("lon"))
		assert.Equal(t, "10", q.Get("radius"))
		assert.Equal(t, "cooling_room,wifi", q.Get("services"))
		assert.Equal(t, "true", q.Get("open_now"))

		writeJSON(t, w, []domain.Hub{{ID: "hub-001", Name: "Convention Center", Status: domain.StatusOpen}})
	}))
	defer srv.Close()

	c := testClient(srv.URL + "/api/")
	hubs, err := c.ListHubs(context.Background(), domain.Query{
		Location: &domain.Coordinates{Lat: 29.7604, Lon: -95.3698},
		Radius:   10,
		Services: []domain.Service{domain.ServiceCooling, domain.ServiceWifi},
		OpenNow:  true,
	})
	require.NoError(t, err)
	require.Len(t, hubs, 1)
	assert.Equal(t, "hub-001", hubs[0].ID)
}

func TestClient_ListHubs_NoParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(t, w, []domain.Hub{})
	}))
	defer srv.Close()

	hubs, err := testClient(srv.URL).ListHubs(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Empty(t, hubs)
}

func TestClient_ListHubs_AcceptsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, domain.Envelope[[]domain.Hub]{
			Data:        []domain.Hub{{ID: "hub-002"}, {ID: "hub-003"}},
			LastUpdated: time.Now(),
		})
	}))
	defer srv.Close()

	hubs, err := testClient(srv.URL).ListHubs(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Len(t, hubs, 2)
}

func TestClient_ListHubs_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListHubs(context.Background(), domain.Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestClient_ListHubs_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url).ListHubs(context.Background(), domain.Query{})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestClient_ListHubs_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListHubs(context.Background(), domain.Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_GetHub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hubs/hub-001" {
			http.NotFound(w, r)
			return
		}
		writeJSON(t, w, domain.Hub{ID: "hub-001", Name: "George R. Brown Convention Center"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	hub, err := c.GetHub(context.Background(), "hub-001")
	require.NoError(t, err)
	assert.Equal(t, "George R. Brown Convention Center", hub.Name)

	_, err = c.GetHub(context.Background(), "hub-999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestClient_ListAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts", r.URL.Path)
		writeJSON(t, w, []domain.Alert{{ID: "alert-001", Severity: domain.SeverityWarning, Title: "Heat Advisory"}})
	}))
	defer srv.Close()

	alerts, err := testClient(srv.URL).ListAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)
}

func TestClient_ListAlerts_NotFoundIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	_, err := testClient(srv.URL).ListAlerts(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
