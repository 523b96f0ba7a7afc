package alerting

import "github.com/Phani347-06/crowdsense-core/internal/risk"

// EventType identifies an automation trigger condition.
type EventType string

const (
	EventCriticalRisk      EventType = "CRITICAL_RISK"
	EventHighRisk          EventType = "HIGH_RISK"
	EventCapacityExceeded  EventType = "CAPACITY_EXCEEDED"
	EventSurgeDetected     EventType = "SURGE_DETECTED"
	EventPredictedOverflow EventType = "PREDICTED_OVERFLOW"
)

// mailable is the subset of events that trigger an email in addition to
// the audit trail. HIGH_RISK and PREDICTED_OVERFLOW are logged only:
// they fire too often to email without drowning recipients.
var mailable = map[EventType]bool{
	EventCriticalRisk:     true,
	EventCapacityExceeded: true,
	EventSurgeDetected:    true,
}

// Reading is one zone's state at classification time.
type Reading struct {
	ZoneID    string
	ZoneName  string
	Current   int
	Capacity  int
	Predicted int
	CRI       int
	Surge     bool
}

// Classify evaluates a reading against the automation thresholds and
// returns the active events.
//
// CRITICAL_RISK and HIGH_RISK are mutually exclusive (the higher band
// wins); the remaining events are independent and can stack.
func Classify(r Reading) []EventType {
	var events []EventType

	switch {
	case r.CRI >= risk.ThresholdCritical:
		events = append(events, EventCriticalRisk)
	case r.CRI >= risk.ThresholdHigh:
		events = append(events, EventHighRisk)
	}

	if r.Current > r.Capacity {
		events = append(events, EventCapacityExceeded)
	}
	if r.Surge {
		events = append(events, EventSurgeDetected)
	}
	if r.Predicted > r.Capacity {
		events = append(events, EventPredictedOverflow)
	}

	return events
}
