package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"

	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/spatial"
)

// TripReader loads a single stored trip
type TripReader interface {
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.PersistedTrip, error)
}

// TripService handles trip business logic
type TripService struct {
	trips TripReader
}

// NewTripService creates a new trip service
func NewTripService(trips TripReader) *TripService {
	return &TripService{trips: trips}
}

// GetTripFeature returns the trip path as a GeoJSON feature with its metrics as properties
func (s *TripService) GetTripFeature(ctx context.Context, userID uuid.UUID, id int64) (*geojson.Feature, error) {
	trip, err := s.trips.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	path, err := spatial.DecodePathGeoJSON(trip.PathGeoJSON)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		path = []spatial.Point{
			{Lat: trip.StartLat, Lon: trip.StartLon},
			{Lat: trip.EndLat, Lon: trip.EndLon},
		}
	}

	return spatial.PathFeature(path, map[string]interface{}{
		"id":               trip.ID,
		"start_time":       trip.StartTime,
		"duration_seconds": trip.DurationSeconds,
		"distance_meters":  trip.DistanceMeters,
		"movement_type":    string(trip.MovementType),
		"avg_speed":        trip.AvgSpeed,
		"max_speed":        trip.MaxSpeed,
	}), nil
}
