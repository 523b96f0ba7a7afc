package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// handleLive returns the latest full campus snapshot.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

// handleSummary returns the campus summary block of the latest snapshot.
func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Snapshot().Summary)
}

// handleGetZone returns the latest snapshot for one zone.
func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "id")

	snap, ok := s.engine.Zone(zoneID)
	if !ok {
		// Distinguish an unknown zone from one that has not ticked yet.
		if _, err := s.zones.Get(zoneID); errors.Is(err, zone.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"zone_id": zoneID, "pending": true})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleZoneHistory returns the zone's recent raw sample window.
func (s *Server) handleZoneHistory(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "id")

	if _, err := s.zones.Get(zoneID); errors.Is(err, zone.ErrZoneNotFound) {
		writeNotFound(w, "zone not found")
		return
	}

	history := s.engine.ZoneHistory(zoneID)
	if history == nil {
		history = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"zone_id": zoneID,
		"samples": history,
	})
}

// capacityRequest is the body for POST /zones/{id}/capacity.
type capacityRequest struct {
	Capacity int `json:"capacity"`
}

// handleUpdateCapacity applies a new capacity to a zone. The zone is
// re-scored immediately so the response carries the updated risk.
func (s *Server) handleUpdateCapacity(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "id")

	var req capacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	snap, err := s.engine.UpdateCapacity(zoneID, req.Capacity)
	switch {
	case errors.Is(err, zone.ErrZoneNotFound):
		writeNotFound(w, "zone not found")
		return
	case errors.Is(err, zone.ErrInvalidCapacity):
		writeBadRequest(w, "capacity must be positive")
		return
	case err != nil:
		writeInternalError(w, "capacity update failed")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
