package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/repository"
	"github.com/jengzang/records-timeline/internal/timeline"
)

// PointSource loads raw GPS points
type PointSource interface {
	FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.GPSPoint, error)
}

// TimelineStore persists and reads generated timelines
type TimelineStore interface {
	ReplaceRange(ctx context.Context, userID uuid.UUID, from, to time.Time, events []models.TimelineEvent) (repository.ReplaceResult, error)
	ListEvents(ctx context.Context, userID uuid.UUID, filter models.TimelineFilter) ([]models.StoredEvent, error)
}

// GenerationResult summarizes one timeline regeneration
type GenerationResult struct {
	UserID uuid.UUID `json:"user_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Points int       `json:"points"`
	repository.ReplaceResult
}

// TimelineService handles timeline generation business logic
type TimelineService struct {
	points    PointSource
	store     TimelineStore
	processor *timeline.Processor
	cfg       config.TimelineConfig
}

// NewTimelineService creates a new timeline service
func NewTimelineService(points PointSource, store TimelineStore, processor *timeline.Processor, cfg config.TimelineConfig) *TimelineService {
	return &TimelineService{
		points:    points,
		store:     store,
		processor: processor,
		cfg:       cfg,
	}
}

// Config returns the thresholds the service runs with
func (s *TimelineService) Config() config.TimelineConfig {
	return s.cfg
}

// Preview runs the engine over the given points without storing anything
func (s *TimelineService) Preview(ctx context.Context, userID uuid.UUID, points []models.GPSPoint, cfg config.TimelineConfig) ([]models.TimelineEvent, error) {
	return s.processor.Process(ctx, userID, points, cfg)
}

// Regenerate rebuilds the stored timeline of a user for [from, to].
// Zero bounds regenerate everything on that side.
func (s *TimelineService) Regenerate(ctx context.Context, userID uuid.UUID, from, to time.Time) (*GenerationResult, error) {
	points, err := s.points.FindByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load points: %w", err)
	}

	events, err := s.processor.Process(ctx, userID, points, s.cfg)
	if err != nil {
		return nil, err
	}

	written, err := s.store.ReplaceRange(ctx, userID, from, to, events)
	if err != nil {
		return nil, fmt.Errorf("failed to store timeline: %w", err)
	}

	log.Printf("[TimelineService] Regenerated timeline for user %s: %d stays, %d trips, %d gaps",
		userID, written.Stays, written.Trips, written.DataGaps)

	return &GenerationResult{
		UserID:        userID,
		From:          from,
		To:            to,
		Points:        len(points),
		ReplaceResult: written,
	}, nil
}

// ListTimeline returns the stored timeline of a user
func (s *TimelineService) ListTimeline(ctx context.Context, userID uuid.UUID, filter models.TimelineFilter) ([]models.StoredEvent, error) {
	if filter.EndTime > 0 && filter.StartTime > filter.EndTime {
		return nil, fmt.Errorf("start time %d is after end time %d", filter.StartTime, filter.EndTime)
	}
	return s.store.ListEvents(ctx, userID, filter)
}
