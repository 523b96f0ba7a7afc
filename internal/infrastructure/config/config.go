package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for CrowdSense Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Campus   CampusConfig    `yaml:"campus"`
	Zones    []ZoneConfig    `yaml:"zones"`
	Database DatabaseConfig  `yaml:"database"`
	MQTT     MQTTConfig      `yaml:"mqtt"`
	InfluxDB InfluxDBConfig  `yaml:"influxdb"`
	API      APIConfig       `yaml:"api"`
	WS       WebSocketConfig `yaml:"websocket"`
	Engine   EngineConfig    `yaml:"engine"`
	Flow     FlowConfig      `yaml:"flow"`
	Alerting AlertingConfig  `yaml:"alerting"`
	SMTP     SMTPConfig      `yaml:"smtp"`
	Logging  LoggingConfig   `yaml:"logging"`
	Security SecurityConfig  `yaml:"security"`
}

// CampusConfig contains site-wide information.
type CampusConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// ZoneConfig describes one monitored zone. Zones are static configuration;
// only capacity is mutable at runtime (via the capacity-update endpoint).
type ZoneConfig struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Capacity    int     `yaml:"capacity"`
	BaseDensity int     `yaml:"base_density"`
	Category    string  `yaml:"category"` // social | study | academic
	CoordX      float64 `yaml:"coord_x"`  // display coordinates, percent of map width
	CoordY      float64 `yaml:"coord_y"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// InfluxDBConfig contains InfluxDB connection settings for telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// EngineConfig contains tick-loop settings.
//
// The inter-tick delay is drawn uniformly from [MinInterval, MaxInterval]
// each cycle. The jitter is deliberate: it avoids hammering external stores
// on a fixed cadence.
type EngineConfig struct {
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
}

// FlowConfig contains flow-estimator settings.
type FlowConfig struct {
	// Smoothing selects the published flow set: "latest" publishes the most
	// recent tick's flows, "average" averages edges over the smoothing window.
	Smoothing string `yaml:"smoothing"`
}

// AlertingConfig contains alert-automation settings.
type AlertingConfig struct {
	Cooldown      time.Duration `yaml:"cooldown"`
	OperatorEmail string        `yaml:"operator_email"`
	QueueSize     int           `yaml:"queue_size"`
}

// SMTPConfig contains email transport settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
	AllowedDomain  string `yaml:"allowed_domain"`   // e.g. "vnrvjiet.in"; empty disables the check
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CROWDSENSE_SECTION_KEY
// For example: CROWDSENSE_DATABASE_PATH, CROWDSENSE_SMTP_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Campus: CampusConfig{
			ID:       "campus-001",
			Name:     "CrowdSense",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/crowdsense.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "crowdsense-core",
			QoS:      1,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WS: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Engine: EngineConfig{
			MinInterval: 4 * time.Second,
			MaxInterval: 6 * time.Second,
		},
		Flow: FlowConfig{
			Smoothing: "latest",
		},
		Alerting: AlertingConfig{
			Cooldown:  10 * time.Minute,
			QueueSize: 64,
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CROWDSENSE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("CROWDSENSE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("CROWDSENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("CROWDSENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("CROWDSENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// API
	if v := os.Getenv("CROWDSENSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CROWDSENSE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("CROWDSENSE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// SMTP credentials are the most common deployment-time override.
	if v := os.Getenv("CROWDSENSE_SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("CROWDSENSE_SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("CROWDSENSE_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Campus.ID == "" {
		errs = append(errs, "campus.id is required")
	}

	if len(c.Zones) == 0 {
		errs = append(errs, "at least one zone is required")
	}
	seen := make(map[string]struct{}, len(c.Zones))
	for _, z := range c.Zones {
		switch {
		case z.ID == "":
			errs = append(errs, "zone id is required")
		case z.Capacity <= 0:
			errs = append(errs, fmt.Sprintf("zone %s: capacity must be positive", z.ID))
		case z.BaseDensity <= 0:
			errs = append(errs, fmt.Sprintf("zone %s: base_density must be positive", z.ID))
		}
		if _, dup := seen[z.ID]; dup {
			errs = append(errs, fmt.Sprintf("zone %s: duplicate id", z.ID))
		}
		seen[z.ID] = struct{}{}
		switch z.Category {
		case "social", "study", "academic":
		default:
			errs = append(errs, fmt.Sprintf("zone %s: category must be social, study or academic", z.ID))
		}
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Engine.MinInterval <= 0 || c.Engine.MaxInterval < c.Engine.MinInterval {
		errs = append(errs, "engine intervals must satisfy 0 < min_interval <= max_interval")
	}

	switch c.Flow.Smoothing {
	case "latest", "average":
	default:
		errs = append(errs, "flow.smoothing must be latest or average")
	}

	if c.Alerting.Cooldown <= 0 {
		errs = append(errs, "alerting.cooldown must be positive")
	}

	// JWT secret is required: the API exposes capacity updates and
	// registration approval, both of which change alerting behaviour.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set CROWDSENSE_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
