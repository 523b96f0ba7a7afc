package registration

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `CREATE TABLE registrations (
		id TEXT PRIMARY KEY,
		event_name TEXT NOT NULL,
		zone_id TEXT NOT NULL,
		registrant_name TEXT NOT NULL,
		registrant_email TEXT NOT NULL,
		contact_email TEXT NOT NULL DEFAULT '',
		expected_attendance INTEGER NOT NULL DEFAULT 0,
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func sampleRegistration() *Registration {
	return &Registration{
		EventName:          "Tech Fest",
		ZoneID:             "canteen",
		RegistrantName:     "Asha Rao",
		RegistrantEmail:    "asha@example.edu",
		ExpectedAttendance: 120,
		StartsAt:           time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndsAt:             time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC),
	}
}

func TestCreate_And_Get(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	reg := sampleRegistration()
	if err := repo.Create(ctx, reg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if reg.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if reg.Status != StatusPending {
		t.Errorf("Create() status = %v, want PENDING default", reg.Status)
	}

	got, err := repo.Get(ctx, reg.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.EventName != "Tech Fest" || got.ZoneID != "canteen" {
		t.Errorf("Get() = %+v, fields do not round-trip", got)
	}
	if !got.StartsAt.Equal(reg.StartsAt) {
		t.Errorf("StartsAt = %v, want %v", got.StartsAt, reg.StartsAt)
	}
}

func TestCreate_Validation(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	reg := sampleRegistration()
	reg.EventName = ""
	if err := repo.Create(ctx, reg); !errors.Is(err, ErrMissingEventName) {
		t.Errorf("Create() error = %v, want ErrMissingEventName", err)
	}

	reg = sampleRegistration()
	reg.RegistrantEmail = ""
	if err := repo.Create(ctx, reg); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("Create() error = %v, want ErrMissingEmail", err)
	}

	reg = sampleRegistration()
	reg.EndsAt = reg.StartsAt.Add(-time.Hour)
	if err := repo.Create(ctx, reg); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("Create() error = %v, want ErrInvalidTimeRange", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	reg := sampleRegistration()
	if err := repo.Create(ctx, reg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdateStatus(ctx, reg.ID, StatusApproved); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	got, _ := repo.Get(ctx, reg.ID)
	if got.Status != StatusApproved {
		t.Errorf("status = %v, want APPROVED", got.Status)
	}

	if err := repo.UpdateStatus(ctx, reg.ID, Status("BOGUS")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("UpdateStatus(bogus) error = %v, want ErrInvalidStatus", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListByEmail(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	first := sampleRegistration()
	second := sampleRegistration()
	second.RegistrantEmail = "other@example.edu"
	for _, reg := range []*Registration{first, second} {
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	mine, err := repo.ListByEmail(ctx, "asha@example.edu")
	if err != nil {
		t.Fatalf("ListByEmail() error = %v", err)
	}
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Errorf("ListByEmail() = %d rows, want exactly the matching registration", len(mine))
	}
}

func TestNotifiableEmails(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	// Approved with a contact address: contact wins.
	approved := sampleRegistration()
	approved.ContactEmail = "organiser@example.edu"
	approved.Status = StatusApproved

	// Pending without contact: registrant address used.
	pending := sampleRegistration()
	pending.RegistrantEmail = "second@example.edu"

	// Duplicate address collapses.
	duplicate := sampleRegistration()
	duplicate.RegistrantEmail = "second@example.edu"

	// Rejected registrations are excluded.
	rejected := sampleRegistration()
	rejected.RegistrantEmail = "rejected@example.edu"
	rejected.Status = StatusRejected

	// Other zones are excluded.
	elsewhere := sampleRegistration()
	elsewhere.ZoneID = "lib"
	elsewhere.RegistrantEmail = "lib@example.edu"

	for _, reg := range []*Registration{approved, pending, duplicate, rejected, elsewhere} {
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	emails, err := repo.NotifiableEmails(ctx, "canteen")
	if err != nil {
		t.Fatalf("NotifiableEmails() error = %v", err)
	}

	want := map[string]bool{
		"organiser@example.edu": true,
		"second@example.edu":    true,
	}
	if len(emails) != len(want) {
		t.Fatalf("NotifiableEmails() = %v, want %d unique addresses", emails, len(want))
	}
	for _, addr := range emails {
		if !want[addr] {
			t.Errorf("unexpected address %q", addr)
		}
	}
}

func TestNotifyEmail_Fallback(t *testing.T) {
	reg := sampleRegistration()
	if got := reg.NotifyEmail(); got != "asha@example.edu" {
		t.Errorf("NotifyEmail() = %q, want registrant address", got)
	}
	reg.ContactEmail = "contact@example.edu"
	if got := reg.NotifyEmail(); got != "contact@example.edu" {
		t.Errorf("NotifyEmail() = %q, want contact address", got)
	}
}
