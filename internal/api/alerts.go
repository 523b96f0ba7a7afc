package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/alerting"
)

const (
	// activeAlertWindow defines how recent a firing must be to count as
	// active. Matches the alert cooldown, so each active (zone, event)
	// pair appears at most once.
	activeAlertWindow = 10 * time.Minute

	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// handleActiveAlerts returns alerts fired inside the active window.
func (s *Server) handleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	records, err := s.alertHistory.ListRecent(r.Context(), maxHistoryLimit)
	if err != nil {
		s.logger.Error("listing alerts failed", "error", err)
		writeInternalError(w, "listing alerts failed")
		return
	}

	cutoff := time.Now().UTC().Add(-activeAlertWindow)
	active := make([]alerting.Record, 0)
	for _, rec := range records {
		if rec.CreatedAt.After(cutoff) {
			active = append(active, rec)
		}
	}
	writeJSON(w, http.StatusOK, active)
}

// handleAlertHistory returns the newest alert records, optionally
// filtered to one zone via ?zone_id= and bounded via ?limit=.
func (s *Server) handleAlertHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	var (
		records []alerting.Record
		err     error
	)
	if zoneID := r.URL.Query().Get("zone_id"); zoneID != "" {
		records, err = s.alertHistory.ListByZone(r.Context(), zoneID, limit)
	} else {
		records, err = s.alertHistory.ListRecent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error("listing alert history failed", "error", err)
		writeInternalError(w, "listing alert history failed")
		return
	}
	if records == nil {
		records = []alerting.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// manualAlertRequest is the body for POST /alerts.
type manualAlertRequest struct {
	ZoneID  string `json:"zone_id"`
	Message string `json:"message"`
}

// handleManualAlert broadcasts an operator announcement to a zone's
// registered contacts and archives it.
func (s *Server) handleManualAlert(w http.ResponseWriter, r *http.Request) {
	var req manualAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ZoneID == "" || req.Message == "" {
		writeBadRequest(w, "zone_id and message are required")
		return
	}

	z, err := s.zones.Get(req.ZoneID)
	if err != nil {
		writeNotFound(w, "zone not found")
		return
	}

	rec, err := s.alerter.Broadcast(r.Context(), z.ID, z.Name, req.Message)
	if err != nil {
		s.logger.Error("manual broadcast failed", "zone", z.ID, "error", err)
		writeInternalError(w, "broadcast failed")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
