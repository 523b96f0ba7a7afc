package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Phani347-06/crowdsense-core/internal/trend"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

const (
	// defaultTrendWindow matches the dashboard's chart span.
	defaultTrendWindow = 2 * time.Hour
	maxTrendWindow     = 24 * time.Hour
)

// trendWindow parses the optional ?minutes= query parameter.
func trendWindow(r *http.Request) (time.Duration, bool) {
	raw := r.URL.Query().Get("minutes")
	if raw == "" {
		return defaultTrendWindow, true
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 1 {
		return 0, false
	}
	window := time.Duration(minutes) * time.Minute
	if window > maxTrendWindow {
		window = maxTrendWindow
	}
	return window, true
}

// handleTrend returns all zones' per-minute snapshots inside the window.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	window, ok := trendWindow(r)
	if !ok {
		writeBadRequest(w, "minutes must be a positive integer")
		return
	}

	snaps, err := s.trends.ListSince(r.Context(), time.Now().UTC().Add(-window))
	if err != nil {
		s.logger.Error("listing trend snapshots failed", "error", err)
		writeInternalError(w, "listing trend snapshots failed")
		return
	}
	if snaps == nil {
		snaps = []trend.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// handleZoneTrend returns one zone's per-minute snapshots inside the window.
func (s *Server) handleZoneTrend(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	if _, err := s.zones.Get(zoneID); errors.Is(err, zone.ErrZoneNotFound) {
		writeNotFound(w, "zone not found")
		return
	}

	window, ok := trendWindow(r)
	if !ok {
		writeBadRequest(w, "minutes must be a positive integer")
		return
	}

	snaps, err := s.trends.ListZoneSince(r.Context(), zoneID, time.Now().UTC().Add(-window))
	if err != nil {
		s.logger.Error("listing zone trend failed", "zone", zoneID, "error", err)
		writeInternalError(w, "listing trend snapshots failed")
		return
	}
	if snaps == nil {
		snaps = []trend.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}
