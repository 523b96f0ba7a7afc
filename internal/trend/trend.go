// Package trend records per-minute zone snapshots for the dashboard's
// time-series views.
//
// The engine writes one row per zone once a minute. On first boot the
// table is seeded with a synthetic two-hour backfill derived from the
// activity curves so the charts are useful immediately.
package trend

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/activity"
	"github.com/Phani347-06/crowdsense-core/internal/risk"
	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// seedMinutes is the length of the synthetic backfill.
const seedMinutes = 120

// Snapshot is one zone's state at one recorded minute.
type Snapshot struct {
	ZoneID     string     `json:"zone_id"`
	Occupancy  int        `json:"occupancy"`
	Predicted  int        `json:"predicted"`
	CRI        int        `json:"cri"`
	RiskLevel  risk.Level `json:"risk_level"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// Repository persists trend snapshots.
type Repository interface {
	InsertBatch(ctx context.Context, snaps []Snapshot) error
	ListSince(ctx context.Context, since time.Time) ([]Snapshot, error)
	ListZoneSince(ctx context.Context, zoneID string, since time.Time) ([]Snapshot, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed trend store.
//
// Security: Uses parameterised SQL queries to prevent injection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InsertBatch stores one minute's snapshots in a single transaction.
func (r *SQLiteRepository) InsertBatch(ctx context.Context, snaps []Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting trend transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO trend_snapshots
		(zone_id, occupancy, predicted, cri, risk_level, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing trend insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snaps {
		if _, err := stmt.ExecContext(ctx,
			s.ZoneID,
			s.Occupancy,
			s.Predicted,
			s.CRI,
			string(s.RiskLevel),
			s.RecordedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting trend snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing trend batch: %w", err)
	}
	return nil
}

// ListSince returns all snapshots recorded at or after since, oldest first.
func (r *SQLiteRepository) ListSince(ctx context.Context, since time.Time) ([]Snapshot, error) {
	return r.query(ctx, `SELECT zone_id, occupancy, predicted, cri, risk_level, recorded_at
		FROM trend_snapshots WHERE recorded_at >= ? ORDER BY recorded_at ASC`,
		since.UTC().Format(time.RFC3339))
}

// ListZoneSince returns one zone's snapshots at or after since, oldest first.
func (r *SQLiteRepository) ListZoneSince(ctx context.Context, zoneID string, since time.Time) ([]Snapshot, error) {
	return r.query(ctx, `SELECT zone_id, occupancy, predicted, cri, risk_level, recorded_at
		FROM trend_snapshots WHERE zone_id = ? AND recorded_at >= ? ORDER BY recorded_at ASC`,
		zoneID, since.UTC().Format(time.RFC3339))
}

// Count returns the number of stored snapshots.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trend_snapshots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting trend snapshots: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying trend snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		var level, recordedAt string
		if err := rows.Scan(&s.ZoneID, &s.Occupancy, &s.Predicted, &s.CRI, &level, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning trend row: %w", err)
		}
		s.RiskLevel = risk.Level(level)
		s.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trend snapshots: %w", err)
	}
	return snaps, nil
}

// Seed backfills the last two hours of synthetic per-minute snapshots
// when the table is empty. Existing data short-circuits the seed so
// restarts never duplicate history.
func Seed(ctx context.Context, repo Repository, zones []zone.Zone, rng *rand.Rand, now time.Time) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking trend store: %w", err)
	}
	if count > 0 {
		return nil
	}

	var batch []Snapshot
	for i := seedMinutes; i > 0; i-- {
		at := now.Add(-time.Duration(i) * time.Minute)
		gf := activity.GlobalFactor(at.Hour(), at.Minute(), at.Weekday())

		for _, z := range zones {
			zf := activity.ZoneFactor(z.Category, at.Hour(), at.Minute())

			target := float64(z.BaseDensity) * gf * zf * uniform(rng, 0.95, 1.05)
			predicted := int(target * uniform(rng, 0.98, 1.02))
			actual := int(target * uniform(rng, 0.9, 1.1))

			cri := risk.Score(actual, z.Capacity, predicted, 0, at.Hour())
			batch = append(batch, Snapshot{
				ZoneID:     z.ID,
				Occupancy:  actual,
				Predicted:  predicted,
				CRI:        cri,
				RiskLevel:  risk.LevelFor(cri),
				RecordedAt: at,
			})
		}
	}

	return repo.InsertBatch(ctx, batch)
}

func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
