package engine

import (
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/flow"
	"github.com/Phani347-06/crowdsense-core/internal/risk"
)

// ZoneSnapshot is one zone's state after a tick. It is the unit served
// by the live API, published per zone over MQTT, and broadcast on the
// WebSocket feed.
type ZoneSnapshot struct {
	ZoneID      string     `json:"zone_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Capacity    int        `json:"capacity"`
	DeviceCount int        `json:"device_count"`
	EstPeople   int        `json:"est_people"`
	Predicted   int        `json:"predicted"`
	GrowthRate  float64    `json:"growth_rate"`
	Surge       bool       `json:"surge"`
	CRI         int        `json:"cri"`
	RiskLevel   risk.Level `json:"risk_level"`
	CoordX      float64    `json:"coord_x"`
	CoordY      float64    `json:"coord_y"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Summary aggregates the campus for the dashboard header.
type Summary struct {
	TotalDevices   int    `json:"total_devices"`
	TotalPeople    int    `json:"total_people"`
	TotalPredicted int    `json:"total_predicted"`
	AvgCRI         int    `json:"avg_cri"`
	MaxCRI         int    `json:"max_cri"`
	PeakZone       string `json:"peak_zone"`
	AlertCount     int    `json:"alert_count"`
}

// CampusSnapshot is the full output of one tick.
type CampusSnapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Zones     []ZoneSnapshot `json:"zones"`
	Flows     []flow.Edge    `json:"flows"`
	Summary   Summary        `json:"summary"`
}

// summarize folds the zone snapshots into a Summary. The peak zone is
// the highest-CRI zone's display name.
func summarize(zones []ZoneSnapshot, alertCount int) Summary {
	s := Summary{AlertCount: alertCount}
	if len(zones) == 0 {
		return s
	}

	criSum := 0
	for _, z := range zones {
		s.TotalDevices += z.DeviceCount
		s.TotalPeople += z.EstPeople
		s.TotalPredicted += z.Predicted
		criSum += z.CRI
		if z.CRI > s.MaxCRI || s.PeakZone == "" {
			s.MaxCRI = z.CRI
			s.PeakZone = z.Name
		}
	}
	s.AvgCRI = (criSum + len(zones)/2) / len(zones)
	return s
}
