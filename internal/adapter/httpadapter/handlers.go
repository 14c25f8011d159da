package httpadapter

import (
	"net/http"
	"time"

	"github.com/couchcryptid/resilience-hubs/internal/domain"
)

// directoryHub is a ranked hub decorated for display.
type directoryHub struct {
	domain.Hub
	StatusLabel      domain.StatusLabel    `json:"status_label"`
	ServiceLabels    []domain.ServiceLabel `json:"service_labels"`
	DirectionsURL    string                `json:"directions_url"`
	RecentlyVerified bool                  `json:"recently_verified"`
	VerifiedAgo      string                `json:"verified_ago"`
}

type directoryResponse struct {
	Hubs        []directoryHub `json:"hubs"`
	Stats       domain.Stats   `json:"stats"`
	Filter      domain.Filter  `json:"filter"`
	LastUpdated time.Time      `json:"last_updated"`
	NextUpdate  *time.Time     `json:"next_update,omitempty"`
}

func (s *Server) handleHubs(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r.Context(), r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	env, err := s.deps.Hubs.Query(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleHub(w http.ResponseWriter, r *http.Request) {
	env, err := s.deps.Hubs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	bounds, err := parseBounds(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fc, err := s.deps.Hubs.GeoJSON(r.Context(), bounds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q, err := s.parseQuery(r.Context(), v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	f := domain.Filter{OpenNow: q.OpenNow, Services: q.Services}
	if f.Accessible, err = parseBool(v, "accessible"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.PetFriendly, err = parseBool(v, "pet_friendly"); err != nil {
		s.writeError(w, r, err)
		return
	}
	maxDistance, err := parsePositive(v, "max_distance")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// radius bounds the fetch, so max_distance can only narrow it.
	if maxDistance == 0 || (q.Radius > 0 && q.Radius < maxDistance) {
		maxDistance = q.Radius
	}
	if maxDistance > 0 {
		f.MaxDistance = &maxDistance
	}

	view, err := s.deps.Hubs.Directory(r.Context(), q.Location, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	platform := domain.PlatformFromUserAgent(r.UserAgent())
	out := directoryResponse{
		Hubs:        make([]directoryHub, len(view.Hubs)),
		Stats:       view.Stats,
		Filter:      view.Filter,
		LastUpdated: view.LastUpdated,
		NextUpdate:  view.NextUpdate,
	}
	for i, h := range view.Hubs {
		labels := make([]domain.ServiceLabel, len(h.Services))
		for j, svc := range h.Services {
			labels[j] = domain.ServiceInfo(svc)
		}
		out.Hubs[i] = directoryHub{
			Hub:              h,
			StatusLabel:      domain.StatusInfo(h.Status),
			ServiceLabels:    labels,
			DirectionsURL:    domain.DirectionsURL(h, platform),
			RecentlyVerified: domain.IsRecentlyVerified(h.LastVerified),
			VerifiedAgo:      domain.FormatTimeAgo(h.LastVerified),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Hubs.Alerts(r.Context()))
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	battery, err := parseBattery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Context.Detect(battery))
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.deps.Hubs.Refresh()
	s.logger.Info("response cache cleared on request")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCache(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Hubs.CacheStatus())
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
