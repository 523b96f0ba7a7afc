package alerting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity bands for persisted alerts.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityWarning  = "WARNING"
)

// severityFor maps an event to its persisted severity band.
func severityFor(event EventType) string {
	switch event {
	case EventCriticalRisk, EventCapacityExceeded:
		return SeverityCritical
	case EventHighRisk:
		return SeverityHigh
	default:
		return SeverityWarning
	}
}

// Record is one persisted alert firing.
type Record struct {
	ID         string    `json:"id"`
	ZoneID     string    `json:"zone_id"`
	ZoneName   string    `json:"zone_name"`
	EventType  EventType `json:"event_type"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	CRI        int       `json:"cri"`
	Occupancy  int       `json:"occupancy"`
	Capacity   int       `json:"capacity"`
	Recipients int       `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryRepository persists alert firings.
type HistoryRepository interface {
	Insert(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	ListByZone(ctx context.Context, zoneID string, limit int) ([]Record, error)
}

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite-backed alert history.
//
// Security: Uses parameterised SQL queries to prevent injection.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// Insert stores one alert record. A missing ID is generated.
func (r *SQLiteHistoryRepository) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO alert_history
		(id, zone_id, zone_name, event_type, severity, message, cri, occupancy, capacity, recipients, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ZoneID,
		rec.ZoneName,
		string(rec.EventType),
		rec.Severity,
		rec.Message,
		rec.CRI,
		rec.Occupancy,
		rec.Capacity,
		rec.Recipients,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting alert record: %w", err)
	}
	return nil
}

// ListRecent returns the newest alerts across all zones.
func (r *SQLiteHistoryRepository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	return r.query(ctx, `SELECT id, zone_id, zone_name, event_type, severity, message,
		cri, occupancy, capacity, recipients, created_at
		FROM alert_history ORDER BY created_at DESC LIMIT ?`, limit)
}

// ListByZone returns the newest alerts for one zone.
func (r *SQLiteHistoryRepository) ListByZone(ctx context.Context, zoneID string, limit int) ([]Record, error) {
	return r.query(ctx, `SELECT id, zone_id, zone_name, event_type, severity, message,
		cri, occupancy, capacity, recipients, created_at
		FROM alert_history WHERE zone_id = ? ORDER BY created_at DESC LIMIT ?`, zoneID, limit)
}

func (r *SQLiteHistoryRepository) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alert history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var eventType, createdAt string
		if err := rows.Scan(
			&rec.ID,
			&rec.ZoneID,
			&rec.ZoneName,
			&eventType,
			&rec.Severity,
			&rec.Message,
			&rec.CRI,
			&rec.Occupancy,
			&rec.Capacity,
			&rec.Recipients,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}
		rec.EventType = EventType(eventType)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert history: %w", err)
	}
	return records, nil
}
