package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/spatial"
)

const (
	// cached geocoding rows farther than this from a stay are ignored
	geocodingMatchRadiusMeters = 100.0
	// geohash precision stored with every geocoding row
	storedGeohashPrecision = 9
)

// LocationRepository resolves stay coordinates against favorite areas first
// and cached geocoding results second
type LocationRepository struct {
	db        *sql.DB
	favorites *FavoriteAreaRepository
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *sql.DB, favorites *FavoriteAreaRepository) *LocationRepository {
	return &LocationRepository{db: db, favorites: favorites}
}

// ResolveLocationsBatch names each coordinate it can.
// Coordinates with no match, or whose lookup failed, are left out of the result.
func (r *LocationRepository) ResolveLocationsBatch(ctx context.Context, userID uuid.UUID, coords []models.Coordinate) (map[models.Coordinate]models.ResolvedLocation, error) {
	areas, err := r.favorites.GetFavoriteAreas(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[models.Coordinate]models.ResolvedLocation, len(coords))
	for _, c := range coords {
		if loc, ok := matchFavoriteArea(areas, c); ok {
			resolved[c] = loc
			continue
		}

		loc, ok, err := r.nearestGeocoding(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[LocationRepository] Warning: geocoding lookup for (%.6f, %.6f) failed: %v", c.Latitude, c.Longitude, err)
			continue
		}
		if ok {
			resolved[c] = loc
		}
	}
	return resolved, nil
}

func matchFavoriteArea(areas []models.FavoriteArea, c models.Coordinate) (models.ResolvedLocation, bool) {
	for _, a := range areas {
		if a.Contains(c.Latitude, c.Longitude) {
			id := a.ID
			return models.ResolvedLocation{Name: a.Name, FavoriteID: &id}, true
		}
	}
	return models.ResolvedLocation{}, false
}

// nearestGeocoding searches the geohash cells around c for the closest cached result
func (r *LocationRepository) nearestGeocoding(ctx context.Context, c models.Coordinate) (models.ResolvedLocation, bool, error) {
	precision := spatial.GeohashPrecisionForDistance(2 * geocodingMatchRadiusMeters)
	cells := spatial.GeohashCovering(c.Latitude, c.Longitude, precision)

	placeholders := make([]string, len(cells))
	args := []interface{}{precision}
	for i, cell := range cells {
		placeholders[i] = "?"
		args = append(args, cell)
	}

	query := fmt.Sprintf(`
		SELECT id, latitude, longitude, display_name
		FROM geocoding_results
		WHERE substr(geohash, 1, ?) IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.ResolvedLocation{}, false, fmt.Errorf("failed to query geocoding results: %w", err)
	}
	defer rows.Close()

	var best models.ResolvedLocation
	bestDistance := geocodingMatchRadiusMeters
	found := false
	for rows.Next() {
		var id int64
		var lat, lon float64
		var name string
		if err := rows.Scan(&id, &lat, &lon, &name); err != nil {
			return models.ResolvedLocation{}, false, fmt.Errorf("failed to scan geocoding result: %w", err)
		}

		d := spatial.HaversineDistance(c.Latitude, c.Longitude, lat, lon)
		if d <= bestDistance {
			geocodingID := id
			best = models.ResolvedLocation{Name: name, GeocodingID: &geocodingID}
			bestDistance = d
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return models.ResolvedLocation{}, false, fmt.Errorf("failed to iterate geocoding results: %w", err)
	}
	return best, found, nil
}

// SaveGeocodingResult caches a reverse-geocoded name for a coordinate
func (r *LocationRepository) SaveGeocodingResult(ctx context.Context, lat, lon float64, displayName string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO geocoding_results (latitude, longitude, geohash, display_name)
		VALUES (?, ?, ?, ?)
	`, lat, lon, spatial.EncodeGeohash(lat, lon, storedGeohashPrecision), displayName)
	if err != nil {
		return 0, fmt.Errorf("failed to save geocoding result: %w", err)
	}
	return result.LastInsertId()
}
