package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/models"
)

const tripColumns = `id, user_id, start_time, duration_seconds,
	start_lat, start_lon, end_lat, end_lon, distance_meters,
	avg_gps_speed, max_gps_speed, speed_variance, low_accuracy_points, sample_count,
	movement_type, COALESCE(path_geojson, ''), COALESCE(algo_version, ''), created_at, updated_at`

// TripRepository handles database operations for stored trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (models.PersistedTrip, error) {
	var t models.PersistedTrip
	var mode string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.StartTime,
		&t.DurationSeconds,
		&t.StartLat,
		&t.StartLon,
		&t.EndLat,
		&t.EndLon,
		&t.DistanceMeters,
		&t.AvgSpeed,
		&t.MaxSpeed,
		&t.SpeedVariance,
		&t.LowAccuracyPoints,
		&t.SampleCount,
		&mode,
		&t.PathGeoJSON,
		&t.AlgoVersion,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	t.MovementType = models.ParseTravelMode(mode)
	return t, err
}

// FindTripsByUser returns every stored trip of the user, oldest first
func (r *TripRepository) FindTripsByUser(ctx context.Context, userID uuid.UUID) ([]models.PersistedTrip, error) {
	query := "SELECT " + tripColumns + " FROM trips WHERE user_id = ? ORDER BY start_time, id"

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.PersistedTrip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// GetByID returns one trip of the user
func (r *TripRepository) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.PersistedTrip, error) {
	query := "SELECT " + tripColumns + " FROM trips WHERE id = ? AND user_id = ?"

	t, err := scanTrip(r.db.QueryRowContext(ctx, query, id, userID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &t, nil
}

// UpdateTravelMode changes only the movement type of a trip
func (r *TripRepository) UpdateTravelMode(ctx context.Context, id int64, mode models.TravelMode) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE trips SET movement_type = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(mode), id)
	if err != nil {
		return fmt.Errorf("failed to update trip travel mode: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trip %d: %w", id, ErrNotFound)
	}
	return nil
}
