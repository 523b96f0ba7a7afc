package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validConfig = `
campus:
  id: "test-campus"
zones:
  - id: "canteen"
    name: "Student Canteen"
    capacity: 200
    base_density: 100
    category: "social"
  - id: "lib"
    name: "Main Library"
    capacity: 500
    base_density: 250
    category: "study"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  host: "localhost"
  port: 1883
  client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Campus.ID != "test-campus" {
		t.Errorf("Campus.ID = %q, want %q", cfg.Campus.ID, "test-campus")
	}
	if len(cfg.Zones) != 2 {
		t.Fatalf("len(Zones) = %d, want 2", len(cfg.Zones))
	}
	if cfg.Zones[0].Capacity != 200 {
		t.Errorf("Zones[0].Capacity = %d, want 200", cfg.Zones[0].Capacity)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	// Defaults survive a partial file.
	if cfg.Engine.MinInterval != 4*time.Second || cfg.Engine.MaxInterval != 6*time.Second {
		t.Errorf("Engine intervals = %v/%v, want 4s/6s", cfg.Engine.MinInterval, cfg.Engine.MaxInterval)
	}
	if cfg.Flow.Smoothing != "latest" {
		t.Errorf("Flow.Smoothing = %q, want latest", cfg.Flow.Smoothing)
	}
	if cfg.Alerting.Cooldown != 10*time.Minute {
		t.Errorf("Alerting.Cooldown = %v, want 10m", cfg.Alerting.Cooldown)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg string) string
		content string
	}{
		{
			name: "missing zones",
			content: `
campus:
  id: "test"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`,
		},
		{
			name: "bad category",
			content: `
campus:
  id: "test"
zones:
  - id: "z1"
    capacity: 100
    base_density: 50
    category: "mystery"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`,
		},
		{
			name: "zero capacity",
			content: `
campus:
  id: "test"
zones:
  - id: "z1"
    capacity: 0
    base_density: 50
    category: "social"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`,
		},
		{
			name: "short jwt secret",
			content: `
campus:
  id: "test"
zones:
  - id: "z1"
    capacity: 100
    base_density: 50
    category: "social"
database:
  path: "/tmp/test.db"
security:
  jwt:
    secret: "short"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CROWDSENSE_DATABASE_PATH", "/override/db.sqlite")
	t.Setenv("CROWDSENSE_SMTP_PASSWORD", "supersecret")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/override/db.sqlite" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.SMTP.Password != "supersecret" {
		t.Errorf("SMTP.Password not overridden from environment")
	}
}

func TestValidate_DuplicateZoneID(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "test-secret-key-at-least-32-chars!"
	cfg.Zones = []ZoneConfig{
		{ID: "dup", Capacity: 10, BaseDensity: 5, Category: "social"},
		{ID: "dup", Capacity: 10, BaseDensity: 5, Category: "study"},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected duplicate-id error, got nil")
	}
}
