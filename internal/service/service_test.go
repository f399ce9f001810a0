package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/repository"
	"github.com/jengzang/records-timeline/internal/timeline"
)

var (
	testUser = uuid.MustParse("33333333-3333-4333-8333-333333333333")
	baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	errStore = errors.New("store unavailable")
)

type fakeTripStore struct {
	trips   []models.PersistedTrip
	updates map[int64]models.TravelMode
	findErr error
}

func (f *fakeTripStore) FindTripsByUser(ctx context.Context, userID uuid.UUID) ([]models.PersistedTrip, error) {
	return f.trips, f.findErr
}

func (f *fakeTripStore) UpdateTravelMode(ctx context.Context, id int64, mode models.TravelMode) error {
	if f.updates == nil {
		f.updates = make(map[int64]models.TravelMode)
	}
	f.updates[id] = mode
	return nil
}

func (f *fakeTripStore) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.PersistedTrip, error) {
	for i := range f.trips {
		if f.trips[i].ID == id {
			return &f.trips[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestReclassifyUserTrips(t *testing.T) {
	store := &fakeTripStore{trips: []models.PersistedTrip{
		{ID: 1, DistanceMeters: 5000, DurationSeconds: 300, AvgSpeed: 60 / 3.6, MaxSpeed: 80 / 3.6, SampleCount: 20, MovementType: models.ModeWalk},
		{ID: 2, DistanceMeters: 400, DurationSeconds: 360, AvgSpeed: 4 / 3.6, MaxSpeed: 5 / 3.6, SampleCount: 20, MovementType: models.ModeWalk},
		{ID: 3, DistanceMeters: 5000, DurationSeconds: 600, MovementType: models.ModeUnknown},
	}}

	result, err := NewReclassificationService(store).ReclassifyUserTrips(context.Background(), testUser, config.DefaultTimelineConfig())
	if err != nil {
		t.Fatalf("ReclassifyUserTrips() error = %v", err)
	}

	if result.Total != 3 || result.Updated != 2 {
		t.Errorf("result = %+v, want 3 total and 2 updated", result)
	}
	if len(store.updates) != 2 || store.updates[1] != models.ModeCar || store.updates[3] != models.ModeCar {
		t.Errorf("updates = %v, want trips 1 and 3 set to CAR", store.updates)
	}
	if _, touched := store.updates[2]; touched {
		t.Error("unchanged trip was written")
	}
	if result.Modes[models.ModeCar] != 2 || result.Modes[models.ModeWalk] != 1 {
		t.Errorf("modes = %v, want 2 CAR and 1 WALK", result.Modes)
	}
}

func TestReclassifyUserTripsErrors(t *testing.T) {
	svc := NewReclassificationService(&fakeTripStore{findErr: errStore})
	if _, err := svc.ReclassifyUserTrips(context.Background(), testUser, config.DefaultTimelineConfig()); !errors.Is(err, errStore) {
		t.Errorf("error = %v, want wrapped store error", err)
	}

	cfg := config.DefaultTimelineConfig()
	cfg.CarMinAvgSpeed = 0
	if _, err := NewReclassificationService(&fakeTripStore{}).ReclassifyUserTrips(context.Background(), testUser, cfg); !errors.Is(err, timeline.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

type fakePoints struct {
	points []models.GPSPoint
	err    error
}

func (f *fakePoints) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.GPSPoint, error) {
	return f.points, f.err
}

type fakeTimelineStore struct {
	replaced []models.TimelineEvent
	from, to time.Time
	stored   []models.StoredEvent
}

func (f *fakeTimelineStore) ReplaceRange(ctx context.Context, userID uuid.UUID, from, to time.Time, events []models.TimelineEvent) (repository.ReplaceResult, error) {
	f.replaced = events
	f.from, f.to = from, to
	var r repository.ReplaceResult
	for _, e := range events {
		switch e.(type) {
		case *models.Stay:
			r.Stays++
		case *models.Trip:
			r.Trips++
		case *models.DataGap:
			r.DataGaps++
		}
	}
	return r, nil
}

func (f *fakeTimelineStore) ListEvents(ctx context.Context, userID uuid.UUID, filter models.TimelineFilter) ([]models.StoredEvent, error) {
	return f.stored, nil
}

func stationary(count int) []models.GPSPoint {
	points := make([]models.GPSPoint, count)
	for i := range points {
		points[i] = models.GPSPoint{
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
			Latitude:  40,
			Longitude: -73,
			Accuracy:  10,
		}
	}
	return points
}

func TestTimelineServiceRegenerate(t *testing.T) {
	store := &fakeTimelineStore{}
	svc := NewTimelineService(&fakePoints{points: stationary(15)}, store, timeline.NewProcessor(nil, nil), config.DefaultTimelineConfig())

	from := baseTime
	to := baseTime.Add(time.Hour)
	result, err := svc.Regenerate(context.Background(), testUser, from, to)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	if result.Points != 15 || result.Stays != 1 || result.Trips != 0 {
		t.Errorf("result = %+v, want 15 points and one stay", result)
	}
	if len(store.replaced) != 1 || !store.from.Equal(from) || !store.to.Equal(to) {
		t.Errorf("stored %d events for %v - %v", len(store.replaced), store.from, store.to)
	}
}

func TestTimelineServiceRegenerateErrors(t *testing.T) {
	svc := NewTimelineService(&fakePoints{err: errStore}, &fakeTimelineStore{}, timeline.NewProcessor(nil, nil), config.DefaultTimelineConfig())
	if _, err := svc.Regenerate(context.Background(), testUser, time.Time{}, time.Time{}); !errors.Is(err, errStore) {
		t.Errorf("error = %v, want wrapped load error", err)
	}

	cfg := config.DefaultTimelineConfig()
	cfg.DataGapThresholdSeconds = 0
	store := &fakeTimelineStore{}
	svc = NewTimelineService(&fakePoints{points: stationary(3)}, store, timeline.NewProcessor(nil, nil), cfg)
	_, err := svc.Regenerate(context.Background(), testUser, time.Time{}, time.Time{})
	var runErr *timeline.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("error = %v, want RunError", err)
	}
	if store.replaced != nil {
		t.Error("nothing may be stored after a failed run")
	}
}

func TestTimelineServiceListTimeline(t *testing.T) {
	store := &fakeTimelineStore{stored: []models.StoredEvent{{ID: 1, Kind: models.EventStay}}}
	svc := NewTimelineService(&fakePoints{}, store, timeline.NewProcessor(nil, nil), config.DefaultTimelineConfig())

	events, err := svc.ListTimeline(context.Background(), testUser, models.TimelineFilter{})
	if err != nil || len(events) != 1 {
		t.Fatalf("ListTimeline() = %v, %v", events, err)
	}

	if _, err := svc.ListTimeline(context.Background(), testUser, models.TimelineFilter{StartTime: 200, EndTime: 100}); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestTripServiceFeature(t *testing.T) {
	store := &fakeTripStore{trips: []models.PersistedTrip{
		{
			ID:             5,
			StartLat:       40,
			StartLon:       -73,
			EndLat:         40,
			EndLon:         -72.99,
			DistanceMeters: 850,
			MovementType:   models.ModeCar,
			PathGeoJSON:    `{"type":"LineString","coordinates":[[-73,40],[-72.995,40],[-72.99,40]]}`,
		},
		{ID: 6, StartLat: 41, StartLon: -74, EndLat: 41.01, EndLon: -74},
	}}
	svc := NewTripService(store)

	feature, err := svc.GetTripFeature(context.Background(), testUser, 5)
	if err != nil {
		t.Fatalf("GetTripFeature() error = %v", err)
	}
	line, ok := feature.Geometry.(orb.LineString)
	if !ok || len(line) != 3 {
		t.Fatalf("geometry = %v, want 3 point line", feature.Geometry)
	}
	if feature.Properties["movement_type"] != "CAR" {
		t.Errorf("movement_type = %v, want CAR", feature.Properties["movement_type"])
	}

	feature, err = svc.GetTripFeature(context.Background(), testUser, 6)
	if err != nil {
		t.Fatalf("GetTripFeature() error = %v", err)
	}
	if line, ok := feature.Geometry.(orb.LineString); !ok || len(line) != 2 {
		t.Errorf("trip without path should fall back to its endpoints, got %v", feature.Geometry)
	}

	if _, err := svc.GetTripFeature(context.Background(), testUser, 99); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
