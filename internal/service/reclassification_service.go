package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/timeline"
)

// TripStore reads stored trips and updates their travel mode
type TripStore interface {
	FindTripsByUser(ctx context.Context, userID uuid.UUID) ([]models.PersistedTrip, error)
	UpdateTravelMode(ctx context.Context, id int64, mode models.TravelMode) error
}

// ReclassificationResult reports how many trips were examined and changed
type ReclassificationResult struct {
	Total   int                       `json:"total"`
	Updated int                       `json:"updated"`
	Modes   map[models.TravelMode]int `json:"modes"`
}

// ReclassificationService recomputes travel modes of stored trips without
// regenerating the timeline
type ReclassificationService struct {
	trips TripStore
}

// NewReclassificationService creates a new reclassification service
func NewReclassificationService(trips TripStore) *ReclassificationService {
	return &ReclassificationService{trips: trips}
}

// ReclassifyUserTrips classifies every stored trip of the user with cfg and
// writes back only the trips whose mode changed
func (s *ReclassificationService) ReclassifyUserTrips(ctx context.Context, userID uuid.UUID, cfg config.TimelineConfig) (*ReclassificationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	trips, err := s.trips.FindTripsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	classifier := timeline.NewClassifier(cfg)
	result := &ReclassificationResult{
		Total: len(trips),
		Modes: make(map[models.TravelMode]int),
	}

	for _, trip := range trips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mode := classifier.Classify(trip.Statistics(), trip.DistanceMeters, trip.Duration())
		result.Modes[mode]++
		if mode == trip.MovementType {
			continue
		}

		if err := s.trips.UpdateTravelMode(ctx, trip.ID, mode); err != nil {
			return nil, fmt.Errorf("failed to update trip %d: %w", trip.ID, err)
		}
		result.Updated++
	}

	log.Printf("[TripReclassification] User %s: %d of %d trips changed mode", userID, result.Updated, result.Total)
	return result, nil
}
