package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/alerting"
	"github.com/Phani347-06/crowdsense-core/internal/auth"
	"github.com/Phani347-06/crowdsense-core/internal/engine"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/logging"
	"github.com/Phani347-06/crowdsense-core/internal/registration"
	"github.com/Phani347-06/crowdsense-core/internal/trend"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// gracefulShutdownTimeout bounds the wait for in-flight requests during
// shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	WS     config.WebSocketConfig
	Logger *logging.Logger

	Engine        *engine.Engine
	Zones         *zone.Registry
	Auth          *auth.Service
	Registrations registration.Repository
	AlertHistory  alerting.HistoryRepository
	Alerter       *alerting.Engine
	Trends        trend.Repository

	// ExternalHub lets the caller share one hub between the engine's
	// broadcaster and the server. When nil the server creates its own.
	ExternalHub *Hub
	Version     string
}

// Server is the HTTP API server for CrowdSense Core.
type Server struct {
	cfg    config.APIConfig
	wsCfg  config.WebSocketConfig
	logger *logging.Logger

	engine        *engine.Engine
	zones         *zone.Registry
	auth          *auth.Service
	registrations registration.Repository
	alertHistory  alerting.HistoryRepository
	alerter       *alerting.Engine
	trends        trend.Repository

	version string
	server  *http.Server
	hub     *Hub
	cancel  context.CancelFunc
}

// New creates an API server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Engine == nil:
		return nil, fmt.Errorf("engine is required")
	case deps.Zones == nil:
		return nil, fmt.Errorf("zone registry is required")
	case deps.Auth == nil:
		return nil, fmt.Errorf("auth service is required")
	}

	return &Server{
		cfg:           deps.Config,
		wsCfg:         deps.WS,
		logger:        deps.Logger,
		engine:        deps.Engine,
		zones:         deps.Zones,
		auth:          deps.Auth,
		registrations: deps.Registrations,
		alertHistory:  deps.AlertHistory,
		alerter:       deps.Alerter,
		trends:        deps.Trends,
		version:       deps.Version,
		hub:           deps.ExternalHub,
	}, nil
}

// Start builds the router, starts the WebSocket hub, and launches the
// HTTP listener in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Hub returns the WebSocket hub, creating it if Start has not run yet.
// Used to hand the hub to the engine as its broadcaster.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
