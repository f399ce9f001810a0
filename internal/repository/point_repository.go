package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/database"
	"github.com/jengzang/records-timeline/internal/models"
)

// PointRepository handles database operations for raw GPS points
type PointRepository struct {
	db *sql.DB
}

// NewPointRepository creates a new point repository
func NewPointRepository(db *sql.DB) *PointRepository {
	return &PointRepository{db: db}
}

// FindByUser returns the user's points within [from, to], oldest first.
// A zero bound leaves that side open.
func (r *PointRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.GPSPoint, error) {
	query := `
		SELECT timestamp, latitude, longitude, speed, accuracy, altitude
		FROM gps_points
		WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String(), lowerBound(from), upperBound(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query gps points: %w", err)
	}
	defer rows.Close()

	var points []models.GPSPoint
	for rows.Next() {
		var p models.GPSPoint
		var ts int64
		var altitude sql.NullFloat64
		if err := rows.Scan(&ts, &p.Latitude, &p.Longitude, &p.Speed, &p.Accuracy, &altitude); err != nil {
			return nil, fmt.Errorf("failed to scan gps point: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0).UTC()
		if altitude.Valid {
			alt := altitude.Float64
			p.Altitude = &alt
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gps points: %w", err)
	}
	return points, nil
}

// InsertBatch stores points for a user in one transaction
func (r *PointRepository) InsertBatch(ctx context.Context, userID uuid.UUID, points []models.GPSPoint) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO gps_points (user_id, timestamp, latitude, longitude, speed, accuracy, altitude)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, userID.String(), p.Timestamp.Unix(), p.Latitude, p.Longitude, p.Speed, p.Accuracy, p.Altitude); err != nil {
				return fmt.Errorf("failed to insert gps point: %w", err)
			}
		}
		return nil
	})
}

// ListUserIDs returns every user that has points
func (r *PointRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT user_id FROM gps_points ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func lowerBound(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func upperBound(t time.Time) int64 {
	if t.IsZero() {
		return 1<<63 - 1
	}
	return t.Unix()
}
