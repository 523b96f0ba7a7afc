package influxdb

import (
	"errors"
	"testing"

	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestWriteZoneMetrics_NotConnected(t *testing.T) {
	c := &Client{}

	// Must be a silent no-op when disconnected.
	c.WriteZoneMetrics("canteen", 10, 12, 30, 0.05, false)
	c.WriteFlowMetric("canteen", "lib", 3, 0.4)
	c.WriteAlertMetric("canteen", "SURGE_DETECTED", "WARNING", 55)
	c.Flush()
}
