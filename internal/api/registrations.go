package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Phani347-06/crowdsense-core/internal/registration"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// handleCreateRegistration books an event into a zone. The registrant
// email is taken from the caller's token, not the body, so users cannot
// register on someone else's behalf.
func (s *Server) handleCreateRegistration(w http.ResponseWriter, r *http.Request) {
	var reg registration.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	claims := claimsFrom(r.Context())
	reg.RegistrantEmail = claims.Email
	reg.ID = ""
	reg.Status = ""

	if _, err := s.zones.Get(reg.ZoneID); errors.Is(err, zone.ErrZoneNotFound) {
		writeBadRequest(w, "unknown zone")
		return
	}

	if err := s.registrations.Create(r.Context(), &reg); err != nil {
		switch {
		case errors.Is(err, registration.ErrMissingEventName),
			errors.Is(err, registration.ErrMissingZone),
			errors.Is(err, registration.ErrMissingEmail),
			errors.Is(err, registration.ErrInvalidTimeRange):
			writeBadRequest(w, err.Error())
		default:
			s.logger.Error("creating registration failed", "error", err)
			writeInternalError(w, "creating registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// handleListRegistrations returns every registration, newest first.
func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := s.registrations.List(r.Context())
	if err != nil {
		s.logger.Error("listing registrations failed", "error", err)
		writeInternalError(w, "listing registrations failed")
		return
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// handleMyRegistrations returns the caller's own registrations.
func (s *Server) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	regs, err := s.registrations.ListByEmail(r.Context(), claims.Email)
	if err != nil {
		s.logger.Error("listing registrations failed", "email", claims.Email, "error", err)
		writeInternalError(w, "listing registrations failed")
		return
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// statusRequest is the body for POST /registrations/status.
type statusRequest struct {
	ID     string              `json:"id"`
	Status registration.Status `json:"status"`
}

// handleUpdateRegistrationStatus approves or rejects a registration.
func (s *Server) handleUpdateRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ID == "" {
		writeBadRequest(w, "id is required")
		return
	}

	err := s.registrations.UpdateStatus(r.Context(), req.ID, req.Status)
	switch {
	case errors.Is(err, registration.ErrInvalidStatus):
		writeBadRequest(w, "status must be PENDING, APPROVED or REJECTED")
		return
	case errors.Is(err, registration.ErrNotFound):
		writeNotFound(w, "registration not found")
		return
	case err != nil:
		s.logger.Error("updating registration status failed", "id", req.ID, "error", err)
		writeInternalError(w, "updating registration failed")
		return
	}

	reg, err := s.registrations.Get(r.Context(), req.ID)
	if err != nil {
		writeInternalError(w, "reloading registration failed")
		return
	}
	writeJSON(w, http.StatusOK, reg)
}
