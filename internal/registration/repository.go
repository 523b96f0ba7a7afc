package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for registrations.
type Repository interface {
	Create(ctx context.Context, reg *Registration) error
	Get(ctx context.Context, id string) (*Registration, error)
	List(ctx context.Context) ([]Registration, error)
	ListByEmail(ctx context.Context, email string) ([]Registration, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// NotifiableEmails returns deduplicated alert addresses for a zone:
	// the notify email of every APPROVED or PENDING registration there.
	NotifiableEmails(ctx context.Context, zoneID string) ([]string, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed registration repository.
//
// Security: Uses parameterised SQL queries to prevent injection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const registrationColumns = `id, event_name, zone_id, registrant_name, registrant_email,
	contact_email, expected_attendance, starts_at, ends_at, status, created_at, updated_at`

// Create inserts a new registration. A missing ID is generated; the
// status defaults to PENDING.
func (r *SQLiteRepository) Create(ctx context.Context, reg *Registration) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.Status == "" {
		reg.Status = StatusPending
	}
	if !ValidStatus(reg.Status) {
		return ErrInvalidStatus
	}

	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	query := `INSERT INTO registrations (` + registrationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		reg.ID,
		reg.EventName,
		reg.ZoneID,
		reg.RegistrantName,
		reg.RegistrantEmail,
		reg.ContactEmail,
		reg.ExpectedAttendance,
		reg.StartsAt.UTC().Format(time.RFC3339),
		reg.EndsAt.UTC().Format(time.RFC3339),
		string(reg.Status),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting registration: %w", err)
	}
	return nil
}

// Get retrieves a registration by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying registration: %w", err)
	}
	return reg, nil
}

// List returns all registrations, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

// ListByEmail returns registrations made by the given registrant email,
// newest first.
func (r *SQLiteRepository) ListByEmail(ctx context.Context, email string) ([]Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE registrant_email = ? ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email)
}

// UpdateStatus transitions a registration's review state.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating registration status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// NotifiableEmails implements the alert fan-out query. Rejected
// registrations are excluded; duplicates collapse to one entry.
func (r *SQLiteRepository) NotifiableEmails(ctx context.Context, zoneID string) ([]string, error) {
	query := `SELECT registrant_email, contact_email FROM registrations
		WHERE zone_id = ? AND status IN (?, ?)`

	rows, err := r.db.QueryContext(ctx, query, zoneID,
		string(StatusApproved), string(StatusPending))
	if err != nil {
		return nil, fmt.Errorf("querying notifiable registrations: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var emails []string
	for rows.Next() {
		var registrant, contact string
		if err := rows.Scan(&registrant, &contact); err != nil {
			return nil, fmt.Errorf("scanning registration row: %w", err)
		}
		addr := contact
		if addr == "" {
			addr = registrant
		}
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		emails = append(emails, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating registrations: %w", err)
	}
	return emails, nil
}

func (r *SQLiteRepository) queryMany(ctx context.Context, query string, args ...any) ([]Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning registration row: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating registrations: %w", err)
	}
	return regs, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*Registration, error) {
	var reg Registration
	var startsAt, endsAt, createdAt, updatedAt, status string

	err := row.Scan(
		&reg.ID,
		&reg.EventName,
		&reg.ZoneID,
		&reg.RegistrantName,
		&reg.RegistrantEmail,
		&reg.ContactEmail,
		&reg.ExpectedAttendance,
		&startsAt,
		&endsAt,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reg.Status = Status(status)
	// Timestamps are written by us in RFC3339; parse errors leave zero values.
	reg.StartsAt, _ = time.Parse(time.RFC3339, startsAt)   //nolint:errcheck
	reg.EndsAt, _ = time.Parse(time.RFC3339, endsAt)       //nolint:errcheck
	reg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck
	reg.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck

	return &reg, nil
}
