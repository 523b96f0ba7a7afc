package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/notify"
)

// RecipientSource resolves alert addresses for a zone.
// Implemented by the registration repository.
type RecipientSource interface {
	NotifiableEmails(ctx context.Context, zoneID string) ([]string, error)
}

// Notifier queues messages for asynchronous delivery.
// Implemented by notify.Dispatcher.
type Notifier interface {
	Enqueue(msg notify.Message) error
}

// Publisher receives fired alerts for side channels (MQTT, WebSocket,
// telemetry). Implementations must not block.
type Publisher interface {
	PublishAlert(rec Record)
}

// Logger is the minimal logging surface the engine needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Engine turns zone readings into alert firings.
//
// For each active event not on cooldown it writes an audit log line,
// persists a history record, and, for the mailable subset, resolves
// recipients and queues an email. Everything here is fast or
// asynchronous so the tick loop is never held up.
type Engine struct {
	cooldowns  *CooldownTracker
	history    HistoryRepository
	recipients RecipientSource
	notifier   Notifier
	publisher  Publisher
	logger     Logger

	// operatorEmail is the fallback recipient when a zone has no
	// notifiable registrations.
	operatorEmail string
}

// Options configures an Engine.
type Options struct {
	Cooldown      time.Duration
	OperatorEmail string
}

// NewEngine creates an alerting Engine. publisher may be nil.
func NewEngine(
	history HistoryRepository,
	recipients RecipientSource,
	notifier Notifier,
	publisher Publisher,
	logger Logger,
	opts Options,
) *Engine {
	return &Engine{
		cooldowns:     NewCooldownTracker(opts.Cooldown),
		history:       history,
		recipients:    recipients,
		notifier:      notifier,
		publisher:     publisher,
		logger:        logger,
		operatorEmail: opts.OperatorEmail,
	}
}

// HandleReading classifies a reading and fires any events not on
// cooldown. Persistence errors are logged, never returned: a broken
// history table must not stop alerting.
func (e *Engine) HandleReading(ctx context.Context, r Reading) []Record {
	events := Classify(r)
	if len(events) == 0 {
		return nil
	}

	var fired []Record
	for _, event := range events {
		if !e.cooldowns.TryFire(r.ZoneID, event) {
			continue
		}
		fired = append(fired, e.fire(ctx, r, event))
	}
	return fired
}

// fire handles one event: audit log, history row, side channels, and
// email for the mailable subset.
func (e *Engine) fire(ctx context.Context, r Reading, event EventType) Record {
	rec := Record{
		ZoneID:    r.ZoneID,
		ZoneName:  r.ZoneName,
		EventType: event,
		Severity:  severityFor(event),
		Message:   alertMessage(r, event),
		CRI:       r.CRI,
		Occupancy: r.Current,
		Capacity:  r.Capacity,
		CreatedAt: time.Now().UTC(),
	}

	recipients := 0
	if mailable[event] {
		recipients = e.sendEmail(ctx, r, event)
	}
	rec.Recipients = recipients

	// Audit line first so the trail survives a history-table failure.
	e.logger.Info("alert fired",
		"zone", r.ZoneID,
		"event", string(event),
		"severity", rec.Severity,
		"cri", r.CRI,
		"occupancy", r.Current,
		"capacity", r.Capacity,
		"recipients", recipients,
	)

	if err := e.history.Insert(ctx, &rec); err != nil {
		e.logger.Error("persisting alert record failed",
			"zone", r.ZoneID,
			"event", string(event),
			"error", err,
		)
	}

	if e.publisher != nil {
		e.publisher.PublishAlert(rec)
	}

	return rec
}

// sendEmail resolves recipients and queues the alert mail. Returns the
// number of addresses targeted (zero when abandoned).
func (e *Engine) sendEmail(ctx context.Context, r Reading, event EventType) int {
	addrs, err := e.recipients.NotifiableEmails(ctx, r.ZoneID)
	if err != nil {
		e.logger.Error("resolving alert recipients failed",
			"zone", r.ZoneID,
			"error", err,
		)
		addrs = nil
	}

	if len(addrs) == 0 && e.operatorEmail != "" {
		addrs = []string{e.operatorEmail}
	}
	if len(addrs) == 0 {
		e.logger.Warn("no recipients for alert, skipping email",
			"zone", r.ZoneID,
			"event", string(event),
		)
		return 0
	}

	msg := notify.Message{
		To:      addrs,
		Subject: fmt.Sprintf("CrowdSense Alert: %s in %s", event, zoneLabel(r)),
		Body:    alertBody(r, event),
	}
	if err := e.notifier.Enqueue(msg); err != nil {
		e.logger.Warn("alert email not queued",
			"zone", r.ZoneID,
			"event", string(event),
			"error", err,
		)
		return 0
	}
	return len(addrs)
}

func zoneLabel(r Reading) string {
	if r.ZoneName != "" {
		return r.ZoneName
	}
	return r.ZoneID
}

func alertMessage(r Reading, event EventType) string {
	return fmt.Sprintf("%s | CRI: %d | Count: %d | Cap: %d",
		event, r.CRI, r.Current, r.Capacity)
}

func alertBody(r Reading, event EventType) string {
	utilisation := 0
	if r.Capacity > 0 {
		utilisation = r.Current * 100 / r.Capacity
	}
	return fmt.Sprintf(`AUTOMATED ALERT FROM CROWDSENSE
-------------------------------------
Event: %s
Zone: %s (ID: %s)

Metrics:
- Risk Index (CRI): %d
- Current Occupancy: %d / %d
- Utilization: %d%%
- Surge Detected: %t

Time: %s

Please check the dashboard immediately.
`,
		event,
		zoneLabel(r), r.ZoneID,
		r.CRI,
		r.Current, r.Capacity,
		utilisation,
		r.Surge,
		time.Now().Format("2006-01-02 15:04:05"),
	)
}
