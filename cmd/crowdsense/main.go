// CrowdSense Core - Campus Crowd Intelligence
//
// This is the main entry point for the CrowdSense Core service. It runs
// the crowd-risk scoring engine over the configured campus zones and
// serves the dashboard API:
//   - jittered tick loop: occupancy, surge detection, forecasting, CRI
//   - inter-zone flow estimation
//   - alert automation with cooldowns and email fan-out
//   - REST + WebSocket API, MQTT snapshots, InfluxDB telemetry
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Phani347-06/crowdsense-core/migrations"

	"github.com/Phani347-06/crowdsense-core/internal/alerting"
	"github.com/Phani347-06/crowdsense-core/internal/api"
	"github.com/Phani347-06/crowdsense-core/internal/auth"
	"github.com/Phani347-06/crowdsense-core/internal/engine"
	"github.com/Phani347-06/crowdsense-core/internal/flow"
	"github.com/Phani347-06/crowdsense-core/internal/forecast"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/database"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/influxdb"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/logging"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/mqtt"
	"github.com/Phani347-06/crowdsense-core/internal/notify"
	"github.com/Phani347-06/crowdsense-core/internal/occupancy"
	"github.com/Phani347-06/crowdsense-core/internal/registration"
	"github.com/Phani347-06/crowdsense-core/internal/surge"
	"github.com/Phani347-06/crowdsense-core/internal/trend"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// Initial admin credentials, used only when the user table is empty.
// Override the password immediately after first login.
const (
	defaultAdminEmail    = "admin@vnrvjiet.in"
	adminPasswordEnvVar  = "CROWDSENSE_ADMIN_PASSWORD"
	defaultAdminPassword = "change-me-on-first-login"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use the default logger until config is loaded
	log := logging.Default()
	log.Info("starting CrowdSense Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "zones", len(cfg.Zones))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and run migrations
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", db.Path())

	// Shared random source for the simulation components.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	registry := zone.NewRegistry(cfg.Zones)

	// Repositories
	regs := registration.NewSQLiteRepository(db.DB)
	alertHistory := alerting.NewSQLiteHistoryRepository(db.DB)
	trends := trend.NewSQLiteRepository(db.DB)
	users := auth.NewSQLiteUserRepository(db.DB)

	// Seed the initial admin and the trend backfill on first boot.
	authSvc := auth.NewService(users, cfg.Security.JWT, log)
	if err := authSvc.SeedAdmin(ctx, defaultAdminEmail, adminPassword()); err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	if err := trend.Seed(ctx, trends, registry.All(), rng, time.Now()); err != nil {
		return fmt.Errorf("seeding trend history: %w", err)
	}

	// MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Email dispatch
	dispatcher := notify.NewDispatcher(
		notify.NewSMTPTransport(cfg.SMTP),
		cfg.Alerting.QueueSize,
		log,
	)
	defer dispatcher.Stop()

	// Core pipeline components
	machine := occupancy.NewMachine(registry.All(), rng)
	predictor := forecast.NewDamped(nil, forecast.NewFallback(rng))
	flows := flow.NewEstimator(cfg.Flow.Smoothing)

	// The WebSocket hub is shared: the engine and the alert fan-out
	// broadcast through it, and the API server serves it.
	hub := api.NewHub(cfg.WS, log)

	fanout := engine.NewAlertFanout(publisherOrNil(mqttClient), metricsOrNil(influxClient), hub, log)
	alerter := alerting.NewEngine(alertHistory, regs, dispatcher, fanout, log, alerting.Options{
		Cooldown:      cfg.Alerting.Cooldown,
		OperatorEmail: cfg.Alerting.OperatorEmail,
	})

	eng, err := engine.New(engine.Options{
		Registry:    registry,
		Machine:     machine,
		Predictor:   predictor,
		Flows:       flows,
		Detect:      surge.Detect,
		Alerter:     alerter,
		Fanout:      fanout,
		Trends:      trends,
		Publisher:   publisherOrNil(mqttClient),
		Metrics:     metricsOrNil(influxClient),
		Broadcaster: hub,
		Logger:      log,
		Rand:        rng,
		MinInterval: cfg.Engine.MinInterval,
		MaxInterval: cfg.Engine.MaxInterval,
	})
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	// Operators can also adjust capacities over the broker.
	if mqttClient != nil {
		filter := mqtt.Topics{}.CapacityCommandFilter()
		if err := mqttClient.Subscribe(filter, byte(cfg.MQTT.QoS), eng.HandleCapacityCommand); err != nil {
			return fmt.Errorf("subscribing to capacity commands: %w", err)
		}
		log.Info("subscribed to capacity commands", "topic", filter)
	}

	server, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WS,
		Logger:        log,
		Engine:        eng,
		Zones:         registry,
		Auth:          authSvc,
		Registrations: regs,
		AlertHistory:  alertHistory,
		Alerter:       alerter,
		Trends:        trends,
		ExternalHub:   hub,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("building API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Run the tick loop in the foreground until shutdown.
	log.Info("initialisation complete, engine running")
	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("engine stopped: %w", err)
	}

	log.Info("CrowdSense Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the CROWDSENSE_CONFIG environment variable if set.
func getConfigPath() string {
	if path := os.Getenv("CROWDSENSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// adminPassword returns the initial admin password, preferring the
// environment override.
func adminPassword() string {
	if pw := os.Getenv(adminPasswordEnvVar); pw != "" {
		return pw
	}
	return defaultAdminPassword
}

// publisherOrNil avoids a typed-nil interface when MQTT is disabled.
func publisherOrNil(c *mqtt.Client) engine.MessagePublisher {
	if c == nil {
		return nil
	}
	return c
}

// metricsOrNil avoids a typed-nil interface when InfluxDB is disabled.
func metricsOrNil(c *influxdb.Client) engine.MetricsWriter {
	if c == nil {
		return nil
	}
	return c
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients are skipped when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
