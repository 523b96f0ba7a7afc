package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Phani347-06/crowdsense-core/internal/activity"
	"github.com/Phani347-06/crowdsense-core/internal/risk"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// zoneForecast is one zone's schedule-based estimate for a point in time.
type zoneForecast struct {
	ZoneID    string     `json:"zone_id"`
	Name      string     `json:"name"`
	Hour      int        `json:"hour"`
	Minute    int        `json:"minute"`
	Expected  int        `json:"expected"`
	CRI       int        `json:"cri"`
	RiskLevel risk.Level `json:"risk_level"`
}

// forecastAt computes the curve-based expectation for one zone. These
// endpoints answer "what does a normal day look like", so they use the
// activity curves alone and ignore live state.
func forecastAt(z zone.Zone, hour, minute int, weekday time.Weekday) zoneForecast {
	gf := activity.GlobalFactor(hour, minute, weekday)
	zf := activity.ZoneFactor(z.Category, hour, minute)
	expected := int(float64(z.BaseDensity) * gf * zf)
	cri := risk.Score(expected, z.Capacity, expected, 0, hour)

	return zoneForecast{
		ZoneID:    z.ID,
		Name:      z.Name,
		Hour:      hour,
		Minute:    minute,
		Expected:  expected,
		CRI:       cri,
		RiskLevel: risk.LevelFor(cri),
	}
}

// handleForecast returns every zone's expected occupancy for a given
// time of day (?hour=&minute=, defaulting to now).
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	hour, minute := now.Hour(), now.Minute()

	if raw := r.URL.Query().Get("hour"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 23 {
			writeBadRequest(w, "hour must be between 0 and 23")
			return
		}
		hour = parsed
	}
	if raw := r.URL.Query().Get("minute"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 59 {
			writeBadRequest(w, "minute must be between 0 and 59")
			return
		}
		minute = parsed
	}

	zones := s.zones.All()
	forecasts := make([]zoneForecast, 0, len(zones))
	for _, z := range zones {
		forecasts = append(forecasts, forecastAt(z, hour, minute, now.Weekday()))
	}
	writeJSON(w, http.StatusOK, forecasts)
}

// handleForecast24h returns one zone's expected occupancy for each hour
// of the day.
func (s *Server) handleForecast24h(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	z, err := s.zones.Get(zoneID)
	if errors.Is(err, zone.ErrZoneNotFound) {
		writeNotFound(w, "zone not found")
		return
	}

	weekday := time.Now().Weekday()
	hours := make([]zoneForecast, 0, 24)
	for hour := 0; hour < 24; hour++ {
		hours = append(hours, forecastAt(z, hour, 0, weekday))
	}
	writeJSON(w, http.StatusOK, hours)
}
