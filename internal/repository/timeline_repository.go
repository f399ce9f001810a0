package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/database"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/spatial"
)

// AlgoVersion tags rows written by the streaming timeline engine
const AlgoVersion = "streaming-v1"

// ReplaceResult counts the rows written by ReplaceRange
type ReplaceResult struct {
	Stays    int `json:"stays"`
	Trips    int `json:"trips"`
	DataGaps int `json:"data_gaps"`
}

// TimelineRepository stores generated timelines
type TimelineRepository struct {
	db *sql.DB
}

// NewTimelineRepository creates a new timeline repository
func NewTimelineRepository(db *sql.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// ReplaceRange deletes the user's events starting within [from, to] and
// stores events in their place, all in one transaction
func (r *TimelineRepository) ReplaceRange(ctx context.Context, userID uuid.UUID, from, to time.Time, events []models.TimelineEvent) (ReplaceResult, error) {
	var result ReplaceResult
	user := userID.String()

	err := database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"stays", "trips", "data_gaps"} {
			query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND start_time >= ? AND start_time <= ?", table)
			if _, err := tx.ExecContext(ctx, query, user, lowerBound(from), upperBound(to)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for _, e := range events {
			switch ev := e.(type) {
			case *models.Stay:
				if err := insertStay(ctx, tx, user, ev); err != nil {
					return err
				}
				result.Stays++
			case *models.Trip:
				if err := insertTrip(ctx, tx, user, ev); err != nil {
					return err
				}
				result.Trips++
			case *models.DataGap:
				if err := insertDataGap(ctx, tx, user, ev); err != nil {
					return err
				}
				result.DataGaps++
			}
		}
		return nil
	})
	if err != nil {
		return ReplaceResult{}, err
	}
	return result, nil
}

func insertStay(ctx context.Context, tx *sql.Tx, user string, s *models.Stay) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stays (
			user_id, start_time, end_time, duration_seconds, latitude, longitude,
			point_count, location_name, favorite_id, geocoding_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user,
		s.Start.Unix(),
		s.EndTime().Unix(),
		int64(s.Duration.Seconds()),
		s.Latitude,
		s.Longitude,
		s.PointCount,
		s.LocationName,
		s.FavoriteID,
		s.GeocodingID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stay: %w", err)
	}
	return nil
}

func insertTrip(ctx context.Context, tx *sql.Tx, user string, t *models.Trip) error {
	path := make([]spatial.Point, len(t.Path))
	for i, p := range t.Path {
		path[i] = spatial.Point{Lat: p.Latitude, Lon: p.Longitude}
	}
	pathJSON, err := spatial.EncodePathGeoJSON(path)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trips (
			user_id, start_time, end_time, duration_seconds,
			start_lat, start_lon, end_lat, end_lon, distance_meters,
			avg_gps_speed, max_gps_speed, speed_variance, low_accuracy_points, sample_count,
			movement_type, path_geojson, algo_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user,
		t.Start.Unix(),
		t.EndTime().Unix(),
		int64(t.Duration.Seconds()),
		t.StartPoint.Latitude,
		t.StartPoint.Longitude,
		t.EndPoint.Latitude,
		t.EndPoint.Longitude,
		t.DistanceMeters,
		t.Statistics.AvgSpeed,
		t.Statistics.MaxSpeed,
		t.Statistics.SpeedVariance,
		t.Statistics.LowAccuracyPoints,
		t.Statistics.SampleCount,
		string(t.TravelMode),
		pathJSON,
		AlgoVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

func insertDataGap(ctx context.Context, tx *sql.Tx, user string, g *models.DataGap) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO data_gaps (user_id, start_time, end_time, duration_seconds)
		VALUES (?, ?, ?, ?)
	`, user, g.Start.Unix(), g.End.Unix(), int64(g.Duration().Seconds()))
	if err != nil {
		return fmt.Errorf("failed to insert data gap: %w", err)
	}
	return nil
}

// ListEvents returns the stored timeline of a user in chronological order
func (r *TimelineRepository) ListEvents(ctx context.Context, userID uuid.UUID, filter models.TimelineFilter) ([]models.StoredEvent, error) {
	from := filter.StartTime
	to := filter.EndTime
	if to <= 0 {
		to = 1<<63 - 1
	}

	query := `
		SELECT id, 'STAY', start_time, end_time, duration_seconds, latitude, longitude, location_name, 0.0, ''
		FROM stays WHERE user_id = ? AND start_time >= ? AND start_time <= ?
		UNION ALL
		SELECT id, 'TRIP', start_time, end_time, duration_seconds, start_lat, start_lon, '', distance_meters, movement_type
		FROM trips WHERE user_id = ? AND start_time >= ? AND start_time <= ?
		UNION ALL
		SELECT id, 'DATA_GAP', start_time, end_time, duration_seconds, 0.0, 0.0, '', 0.0, ''
		FROM data_gaps WHERE user_id = ? AND start_time >= ? AND start_time <= ?
		ORDER BY 3, 4
	`

	user := userID.String()
	rows, err := r.db.QueryContext(ctx, query, user, from, to, user, from, to, user, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	var events []models.StoredEvent
	for rows.Next() {
		var e models.StoredEvent
		var kind, mode string
		if err := rows.Scan(&e.ID, &kind, &e.StartTime, &e.EndTime, &e.DurationSeconds,
			&e.Latitude, &e.Longitude, &e.LocationName, &e.DistanceMeters, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan timeline event: %w", err)
		}
		e.Kind = models.EventKind(kind)
		e.MovementType = models.TravelMode(mode)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timeline: %w", err)
	}
	return events, nil
}
