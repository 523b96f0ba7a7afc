package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteZoneMetrics writes one tick's readings for a zone.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Tags carry the zone identity; fields carry the per-tick values.
//
// Example:
//
//	client.WriteZoneMetrics("canteen", 142, 156, 78, 0.12, false)
func (c *Client) WriteZoneMetrics(zoneID string, occupancy, predicted, cri int, growthRate float64, surge bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_metrics",
		map[string]string{
			"zone_id": zoneID,
		},
		map[string]interface{}{
			"occupancy":   occupancy,
			"predicted":   predicted,
			"cri":         cri,
			"growth_rate": growthRate,
			"surge":       surge,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteFlowMetric writes one inter-zone flow edge.
func (c *Client) WriteFlowMetric(fromZone, toZone string, people int, intensity float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_flows",
		map[string]string{
			"from_zone": fromZone,
			"to_zone":   toZone,
		},
		map[string]interface{}{
			"people":    people,
			"intensity": intensity,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteAlertMetric records an alert firing for dashboarding.
func (c *Client) WriteAlertMetric(zoneID, eventType, severity string, cri int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"alerts",
		map[string]string{
			"zone_id":    zoneID,
			"event_type": eventType,
			"severity":   severity,
		},
		map[string]interface{}{
			"cri": cri,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
