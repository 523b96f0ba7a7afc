package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health and auth are open.
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		// Dashboard reads are open: the kiosk displays run unauthenticated.
		r.Get("/live", s.handleLive)
		r.Get("/summary", s.handleSummary)
		r.Route("/zones/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetZone)
			r.Get("/history", s.handleZoneHistory)
		})
		r.Get("/alerts", s.handleActiveAlerts)
		r.Get("/alerts/history", s.handleAlertHistory)
		r.Get("/trend", s.handleTrend)
		r.Get("/trend/{zoneID}", s.handleZoneTrend)
		r.Get("/forecast", s.handleForecast)
		r.Get("/forecast/24h/{zoneID}", s.handleForecast24h)

		// WebSocket live feed.
		r.Get("/ws", s.handleWebSocket)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/registrations", s.handleCreateRegistration)
			r.Get("/registrations/mine", s.handleMyRegistrations)

			// Admin-only mutations.
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/registrations", s.handleListRegistrations)
				r.Post("/registrations/status", s.handleUpdateRegistrationStatus)
				r.Post("/zones/{id}/capacity", s.handleUpdateCapacity)
				r.Post("/alerts", s.handleManualAlert)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
