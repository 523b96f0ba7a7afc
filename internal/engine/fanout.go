package engine

import (
	"sync/atomic"

	"github.com/Phani347-06/crowdsense-core/internal/alerting"
	"github.com/Phani347-06/crowdsense-core/internal/infrastructure/mqtt"
)

// AlertFanout forwards fired alerts to the side channels: the MQTT
// alert topic, the telemetry store, and the WebSocket feed. It also
// counts firings for the campus summary.
//
// It implements alerting.Publisher. Any sink may be nil.
type AlertFanout struct {
	publisher   MessagePublisher
	metrics     MetricsWriter
	broadcaster Broadcaster
	topics      mqtt.Topics
	logger      Logger

	count atomic.Int64
}

// NewAlertFanout creates an AlertFanout. Nil sinks are skipped.
func NewAlertFanout(publisher MessagePublisher, metrics MetricsWriter, broadcaster Broadcaster, logger Logger) *AlertFanout {
	return &AlertFanout{
		publisher:   publisher,
		metrics:     metrics,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// PublishAlert implements alerting.Publisher.
func (f *AlertFanout) PublishAlert(rec alerting.Record) {
	f.count.Add(1)

	if f.publisher != nil {
		// Alert events are transient; never retained.
		if err := f.publisher.PublishJSON(f.topics.Alert(rec.ZoneID), rec, false); err != nil {
			f.logger.Warn("publishing alert to broker failed",
				"zone", rec.ZoneID,
				"event", string(rec.EventType),
				"error", err,
			)
		}
	}
	if f.metrics != nil {
		f.metrics.WriteAlertMetric(rec.ZoneID, string(rec.EventType), rec.Severity, rec.CRI)
	}
	if f.broadcaster != nil {
		f.broadcaster.BroadcastAlert(rec)
	}
}

// Count returns the number of alerts fired since startup.
func (f *AlertFanout) Count() int {
	return int(f.count.Load())
}
