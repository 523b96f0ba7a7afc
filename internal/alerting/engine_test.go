package alerting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/notify"
)

// ─────────────────────────── Mocks ───────────────────────────

type mockHistory struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (m *mockHistory) Insert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockHistory) ListRecent(_ context.Context, _ int) ([]Record, error) { return m.records, nil }
func (m *mockHistory) ListByZone(_ context.Context, _ string, _ int) ([]Record, error) {
	return m.records, nil
}

type mockRecipients struct {
	emails []string
	err    error
}

func (m *mockRecipients) NotifiableEmails(_ context.Context, _ string) ([]string, error) {
	return m.emails, m.err
}

type mockNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
	err      error
}

func (m *mockNotifier) Enqueue(msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published []Record
}

func (m *mockPublisher) PublishAlert(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, rec)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// ─────────────────────────── Helpers ───────────────────────────

type testEngine struct {
	engine     *Engine
	history    *mockHistory
	recipients *mockRecipients
	notifier   *mockNotifier
	publisher  *mockPublisher
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	te := &testEngine{
		history:    &mockHistory{},
		recipients: &mockRecipients{emails: []string{"organiser@example.edu"}},
		notifier:   &mockNotifier{},
		publisher:  &mockPublisher{},
	}
	te.engine = NewEngine(te.history, te.recipients, te.notifier, te.publisher, nopLogger{}, Options{
		Cooldown:      10 * time.Minute,
		OperatorEmail: "ops@example.edu",
	})
	return te
}

func criticalReading() Reading {
	return Reading{
		ZoneID:   "canteen",
		ZoneName: "Student Canteen",
		Current:  190,
		Capacity: 200,
		CRI:      90,
	}
}

// ─────────────────────────── Classification ───────────────────────────

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    []EventType
	}{
		{
			name:    "calm zone",
			reading: Reading{Current: 50, Capacity: 200, Predicted: 60, CRI: 30},
			want:    nil,
		},
		{
			name:    "critical band",
			reading: Reading{Current: 150, Capacity: 200, CRI: 85},
			want:    []EventType{EventCriticalRisk},
		},
		{
			name:    "high band",
			reading: Reading{Current: 150, Capacity: 200, CRI: 70},
			want:    []EventType{EventHighRisk},
		},
		{
			name:    "capacity exceeded stacks with critical",
			reading: Reading{Current: 210, Capacity: 200, CRI: 90},
			want:    []EventType{EventCriticalRisk, EventCapacityExceeded},
		},
		{
			name:    "at capacity is not exceeded",
			reading: Reading{Current: 200, Capacity: 200, CRI: 30},
			want:    nil,
		},
		{
			name:    "surge alone",
			reading: Reading{Current: 80, Capacity: 200, CRI: 40, Surge: true},
			want:    []EventType{EventSurgeDetected},
		},
		{
			name:    "predicted overflow",
			reading: Reading{Current: 100, Capacity: 200, Predicted: 220, CRI: 40},
			want:    []EventType{EventPredictedOverflow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.reading)
			if len(got) != len(tt.want) {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Classify()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ─────────────────────────── Cooldown ───────────────────────────

func TestCooldownTracker(t *testing.T) {
	tracker := NewCooldownTracker(10 * time.Minute)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	if !tracker.TryFire("canteen", EventCriticalRisk) {
		t.Fatal("first firing must be allowed")
	}
	if tracker.TryFire("canteen", EventCriticalRisk) {
		t.Error("second firing inside the window must be suppressed")
	}

	// A different event in the same zone has its own key.
	if !tracker.TryFire("canteen", EventSurgeDetected) {
		t.Error("different event type must not share the cooldown")
	}
	// Same event in a different zone too.
	if !tracker.TryFire("lib", EventCriticalRisk) {
		t.Error("different zone must not share the cooldown")
	}

	// Just before expiry: still suppressed.
	now = now.Add(10*time.Minute - time.Second)
	if tracker.TryFire("canteen", EventCriticalRisk) {
		t.Error("firing one second before expiry must be suppressed")
	}

	// At expiry: allowed again.
	now = now.Add(time.Second)
	if !tracker.TryFire("canteen", EventCriticalRisk) {
		t.Error("firing after the window must be allowed")
	}
}

func TestCooldownTracker_Remaining(t *testing.T) {
	tracker := NewCooldownTracker(10 * time.Minute)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }

	if got := tracker.Remaining("canteen", EventCriticalRisk); got != 0 {
		t.Errorf("Remaining() before firing = %v, want 0", got)
	}

	tracker.TryFire("canteen", EventCriticalRisk)
	now = now.Add(4 * time.Minute)
	if got := tracker.Remaining("canteen", EventCriticalRisk); got != 6*time.Minute {
		t.Errorf("Remaining() = %v, want 6m", got)
	}
}

// ─────────────────────────── Engine ───────────────────────────

func TestHandleReading_FiresAndPersists(t *testing.T) {
	te := newTestEngine(t)

	fired := te.engine.HandleReading(context.Background(), criticalReading())
	if len(fired) != 1 {
		t.Fatalf("fired %d events, want 1", len(fired))
	}
	rec := fired[0]
	if rec.EventType != EventCriticalRisk || rec.Severity != SeverityCritical {
		t.Errorf("record = %+v, wrong event or severity", rec)
	}

	if len(te.history.records) != 1 {
		t.Errorf("history rows = %d, want 1", len(te.history.records))
	}
	if len(te.publisher.published) != 1 {
		t.Errorf("published alerts = %d, want 1", len(te.publisher.published))
	}
	if len(te.notifier.messages) != 1 {
		t.Fatalf("queued emails = %d, want 1", len(te.notifier.messages))
	}
	msg := te.notifier.messages[0]
	if msg.To[0] != "organiser@example.edu" {
		t.Errorf("email to %v, want registration recipients", msg.To)
	}
}

func TestHandleReading_CooldownSuppressesRepeat(t *testing.T) {
	te := newTestEngine(t)
	ctx := context.Background()

	first := te.engine.HandleReading(ctx, criticalReading())
	second := te.engine.HandleReading(ctx, criticalReading())

	if len(first) != 1 || len(second) != 0 {
		t.Errorf("firings = %d then %d, want 1 then 0", len(first), len(second))
	}
}

func TestHandleReading_HighRiskIsLogOnly(t *testing.T) {
	te := newTestEngine(t)

	reading := criticalReading()
	reading.CRI = 72 // HIGH band

	fired := te.engine.HandleReading(context.Background(), reading)
	if len(fired) != 1 || fired[0].EventType != EventHighRisk {
		t.Fatalf("fired = %v, want HIGH_RISK only", fired)
	}
	if len(te.notifier.messages) != 0 {
		t.Errorf("HIGH_RISK queued %d emails, want 0", len(te.notifier.messages))
	}
	if len(te.history.records) != 1 {
		t.Errorf("HIGH_RISK history rows = %d, want 1", len(te.history.records))
	}
}

func TestHandleReading_OperatorFallback(t *testing.T) {
	te := newTestEngine(t)
	te.recipients.emails = nil

	te.engine.HandleReading(context.Background(), criticalReading())

	if len(te.notifier.messages) != 1 {
		t.Fatalf("queued emails = %d, want 1", len(te.notifier.messages))
	}
	if got := te.notifier.messages[0].To; len(got) != 1 || got[0] != "ops@example.edu" {
		t.Errorf("email to %v, want operator fallback", got)
	}
}

func TestHandleReading_AbandonsWithoutAnyRecipient(t *testing.T) {
	te := newTestEngine(t)
	te.recipients.emails = nil
	te.engine.operatorEmail = ""

	fired := te.engine.HandleReading(context.Background(), criticalReading())

	if len(te.notifier.messages) != 0 {
		t.Errorf("queued emails = %d, want 0", len(te.notifier.messages))
	}
	// The event still fires and is persisted; only the email is skipped.
	if len(fired) != 1 || fired[0].Recipients != 0 {
		t.Errorf("fired = %+v, want one record with zero recipients", fired)
	}
}

func TestHandleReading_RecipientLookupFailureFallsBack(t *testing.T) {
	te := newTestEngine(t)
	te.recipients.err = errors.New("db locked")

	te.engine.HandleReading(context.Background(), criticalReading())

	if len(te.notifier.messages) != 1 {
		t.Fatalf("queued emails = %d, want operator fallback despite lookup failure", len(te.notifier.messages))
	}
	if te.notifier.messages[0].To[0] != "ops@example.edu" {
		t.Errorf("email to %v, want operator", te.notifier.messages[0].To)
	}
}

func TestHandleReading_HistoryFailureDoesNotStopAlert(t *testing.T) {
	te := newTestEngine(t)
	te.history.err = errors.New("disk full")

	fired := te.engine.HandleReading(context.Background(), criticalReading())

	if len(fired) != 1 {
		t.Errorf("fired = %d, want 1 despite history failure", len(fired))
	}
	if len(te.notifier.messages) != 1 {
		t.Errorf("queued emails = %d, want 1 despite history failure", len(te.notifier.messages))
	}
}
