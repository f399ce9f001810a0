package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/models"
)

// FavoriteAreaRepository handles database operations for favorite areas
type FavoriteAreaRepository struct {
	db *sql.DB
}

// NewFavoriteAreaRepository creates a new favorite area repository
func NewFavoriteAreaRepository(db *sql.DB) *FavoriteAreaRepository {
	return &FavoriteAreaRepository{db: db}
}

// GetFavoriteAreas returns every favorite area of the user
func (r *FavoriteAreaRepository) GetFavoriteAreas(ctx context.Context, userID uuid.UUID) ([]models.FavoriteArea, error) {
	query := `
		SELECT id, name, sw_lat, sw_lon, ne_lat, ne_lon
		FROM favorite_areas
		WHERE user_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite areas: %w", err)
	}
	defer rows.Close()

	var areas []models.FavoriteArea
	for rows.Next() {
		var a models.FavoriteArea
		if err := rows.Scan(&a.ID, &a.Name, &a.SouthWestLat, &a.SouthWestLon, &a.NorthEastLat, &a.NorthEastLon); err != nil {
			return nil, fmt.Errorf("failed to scan favorite area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// Create stores a new favorite area and sets its ID
func (r *FavoriteAreaRepository) Create(ctx context.Context, userID uuid.UUID, area *models.FavoriteArea) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO favorite_areas (user_id, name, sw_lat, sw_lon, ne_lat, ne_lon)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID.String(), area.Name, area.SouthWestLat, area.SouthWestLon, area.NorthEastLat, area.NorthEastLon)
	if err != nil {
		return fmt.Errorf("failed to create favorite area: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	area.ID = id
	return nil
}
