package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/notify"
)

// EventManualBroadcast is an operator-initiated announcement. It is not
// produced by classification and bypasses the cooldown tracker.
const EventManualBroadcast EventType = "MANUAL_BROADCAST"

// Broadcast sends an operator announcement to a zone's registered
// contacts. The message is archived to alert history and published on
// the side channels like any automated firing.
func (e *Engine) Broadcast(ctx context.Context, zoneID, zoneName, message string) (Record, error) {
	if message == "" {
		return Record{}, fmt.Errorf("broadcast message is required")
	}

	rec := Record{
		ZoneID:    zoneID,
		ZoneName:  zoneName,
		EventType: EventManualBroadcast,
		Severity:  SeverityWarning,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	addrs, err := e.recipients.NotifiableEmails(ctx, zoneID)
	if err != nil {
		e.logger.Error("resolving broadcast recipients failed", "zone", zoneID, "error", err)
		addrs = nil
	}
	if len(addrs) == 0 && e.operatorEmail != "" {
		addrs = []string{e.operatorEmail}
	}

	if len(addrs) > 0 {
		label := zoneName
		if label == "" {
			label = zoneID
		}
		msg := notify.Message{
			To:      addrs,
			Subject: fmt.Sprintf("CrowdSense Alert: %s in %s", EventManualBroadcast, label),
			Body:    fmt.Sprintf("ANNOUNCEMENT FROM CROWDSENSE OPERATIONS\n-------------------------------------\nZone: %s\n\n%s\n\nTime: %s\n", label, message, rec.CreatedAt.Format("2006-01-02 15:04:05")),
		}
		if err := e.notifier.Enqueue(msg); err != nil {
			e.logger.Warn("broadcast email not queued", "zone", zoneID, "error", err)
		} else {
			rec.Recipients = len(addrs)
		}
	}

	e.logger.Info("manual alert broadcast",
		"zone", zoneID,
		"recipients", rec.Recipients,
	)

	if err := e.history.Insert(ctx, &rec); err != nil {
		return Record{}, fmt.Errorf("archiving broadcast: %w", err)
	}

	if e.publisher != nil {
		e.publisher.PublishAlert(rec)
	}
	return rec, nil
}
