package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/database"
	"github.com/jengzang/records-timeline/internal/models"
)

var (
	baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	userA    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	userB    = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestPointRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPointRepository(openTestDB(t))

	alt := 12.5
	points := []models.GPSPoint{
		{Timestamp: baseTime.Add(2 * time.Minute), Latitude: 40.1, Longitude: -73.1, Speed: 1, Accuracy: 5},
		{Timestamp: baseTime, Latitude: 40.0, Longitude: -73.0, Speed: -1, Accuracy: 8, Altitude: &alt},
		{Timestamp: baseTime.Add(time.Hour), Latitude: 40.2, Longitude: -73.2, Speed: 2, Accuracy: 3},
	}
	if err := repo.InsertBatch(ctx, userA, points); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	if err := repo.InsertBatch(ctx, userB, points[:1]); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	got, err := repo.FindByUser(ctx, userA, time.Time{}, baseTime.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("FindByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if !got[0].Timestamp.Equal(baseTime) || got[0].Altitude == nil || *got[0].Altitude != alt {
		t.Errorf("first point = %+v, want the one at %v with altitude", got[0], baseTime)
	}
	if got[0].Speed != -1 {
		t.Errorf("missing speed stored as %v, want -1", got[0].Speed)
	}
	if got[1].Altitude != nil {
		t.Errorf("second point altitude = %v, want nil", *got[1].Altitude)
	}

	users, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs() error = %v", err)
	}
	if len(users) != 2 || users[0] != userA || users[1] != userB {
		t.Errorf("ListUserIDs() = %v, want [%s %s]", users, userA, userB)
	}
}

func TestLocationRepositoryResolvesFavoritesFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	favorites := NewFavoriteAreaRepository(db)
	locations := NewLocationRepository(db, favorites)

	area := &models.FavoriteArea{Name: "Home", SouthWestLat: 39.999, SouthWestLon: -73.001, NorthEastLat: 40.001, NorthEastLon: -72.999}
	if err := favorites.Create(ctx, userA, area); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := locations.SaveGeocodingResult(ctx, 40.0, -73.0, "Main Street 1"); err != nil {
		t.Fatalf("SaveGeocodingResult() error = %v", err)
	}
	cafeID, err := locations.SaveGeocodingResult(ctx, 40.0100, -73.0000, "Corner Cafe")
	if err != nil {
		t.Fatalf("SaveGeocodingResult() error = %v", err)
	}

	home := models.Coordinate{Latitude: 40.0, Longitude: -73.0}
	nearCafe := models.Coordinate{Latitude: 40.0105, Longitude: -73.0} // about 56 m away
	nowhere := models.Coordinate{Latitude: 40.0200, Longitude: -73.0}  // about 1.1 km from the cafe

	got, err := locations.ResolveLocationsBatch(ctx, userA, []models.Coordinate{home, nearCafe, nowhere})
	if err != nil {
		t.Fatalf("ResolveLocationsBatch() error = %v", err)
	}

	if loc := got[home]; loc.Name != "Home" || loc.FavoriteID == nil || *loc.FavoriteID != area.ID {
		t.Errorf("home resolved to %+v, want favorite Home", loc)
	}
	if loc := got[nearCafe]; loc.Name != "Corner Cafe" || loc.GeocodingID == nil || *loc.GeocodingID != cafeID {
		t.Errorf("nearCafe resolved to %+v, want Corner Cafe", loc)
	}
	if loc, ok := got[nowhere]; ok {
		t.Errorf("nowhere resolved to %+v, want no match", loc)
	}

	// Favorites are per user.
	got, err = locations.ResolveLocationsBatch(ctx, userB, []models.Coordinate{home})
	if err != nil {
		t.Fatalf("ResolveLocationsBatch() error = %v", err)
	}
	if loc := got[home]; loc.Name != "Main Street 1" {
		t.Errorf("home for another user resolved to %+v, want cached geocoding", loc)
	}
}

func TestLocationRepositoryDegradesPerCoordinate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	favorites := NewFavoriteAreaRepository(db)
	locations := NewLocationRepository(db, favorites)

	area := &models.FavoriteArea{Name: "Home", SouthWestLat: 39.999, SouthWestLon: -73.001, NorthEastLat: 40.001, NorthEastLon: -72.999}
	if err := favorites.Create(ctx, userA, area); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// every geocoding lookup now fails
	if _, err := db.Exec("DROP TABLE geocoding_results"); err != nil {
		t.Fatalf("drop geocoding_results: %v", err)
	}

	home := models.Coordinate{Latitude: 40.0, Longitude: -73.0}
	elsewhere := models.Coordinate{Latitude: 40.05, Longitude: -73.0}
	got, err := locations.ResolveLocationsBatch(ctx, userA, []models.Coordinate{elsewhere, home})
	if err != nil {
		t.Fatalf("ResolveLocationsBatch() error = %v, want failed lookups skipped", err)
	}
	if loc := got[home]; loc.Name != "Home" {
		t.Errorf("home resolved to %+v, want favorite Home", loc)
	}
	if loc, ok := got[elsewhere]; ok {
		t.Errorf("elsewhere resolved to %+v, want no entry", loc)
	}
}

func sampleTimeline() []models.TimelineEvent {
	return []models.TimelineEvent{
		&models.Stay{Start: baseTime, Duration: 20 * time.Minute, Latitude: 40, Longitude: -73, PointCount: 50, LocationName: "Home"},
		&models.DataGap{Start: baseTime.Add(20 * time.Minute), End: baseTime.Add(140 * time.Minute)},
		&models.Trip{
			Start:          baseTime.Add(140 * time.Minute),
			Duration:       3 * time.Minute,
			DistanceMeters: 2000,
			TravelMode:     models.ModeCar,
			Statistics:     models.TripGpsStatistics{AvgSpeed: 11, MaxSpeed: 12, SpeedVariance: 0.5, SampleCount: 2},
			StartPoint:     models.GPSPoint{Timestamp: baseTime.Add(140 * time.Minute), Latitude: 40, Longitude: -73},
			EndPoint:       models.GPSPoint{Timestamp: baseTime.Add(143 * time.Minute), Latitude: 40, Longitude: -72.9765},
			Path: []models.GPSPoint{
				{Timestamp: baseTime.Add(140 * time.Minute), Latitude: 40, Longitude: -73},
				{Timestamp: baseTime.Add(143 * time.Minute), Latitude: 40, Longitude: -72.9765},
			},
		},
	}
}

func TestTimelineRepositoryReplaceRange(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	timeline := NewTimelineRepository(db)

	result, err := timeline.ReplaceRange(ctx, userA, baseTime, baseTime.Add(3*time.Hour), sampleTimeline())
	if err != nil {
		t.Fatalf("ReplaceRange() error = %v", err)
	}
	if result != (ReplaceResult{Stays: 1, Trips: 1, DataGaps: 1}) {
		t.Errorf("ReplaceRange() = %+v, want one of each", result)
	}

	events, err := timeline.ListEvents(ctx, userA, models.TimelineFilter{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	wantKinds := []models.EventKind{models.EventStay, models.EventDataGap, models.EventTrip}
	if len(events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d", len(events), len(wantKinds))
	}
	for i, k := range wantKinds {
		if events[i].Kind != k {
			t.Errorf("event %d kind = %s, want %s", i, events[i].Kind, k)
		}
	}
	if events[0].LocationName != "Home" || events[0].DurationSeconds != 1200 {
		t.Errorf("stay = %+v, want Home for 1200s", events[0])
	}
	if events[2].MovementType != models.ModeCar || events[2].DistanceMeters != 2000 {
		t.Errorf("trip = %+v, want CAR over 2000m", events[2])
	}

	// Replacing an overlapping window removes only what started inside it.
	replacement := []models.TimelineEvent{
		&models.Stay{Start: baseTime.Add(140 * time.Minute), Duration: 30 * time.Minute, Latitude: 40, Longitude: -73, LocationName: "Office"},
	}
	if _, err := timeline.ReplaceRange(ctx, userA, baseTime.Add(time.Hour), baseTime.Add(3*time.Hour), replacement); err != nil {
		t.Fatalf("ReplaceRange() error = %v", err)
	}
	events, err = timeline.ListEvents(ctx, userA, models.TimelineFilter{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 3 || events[2].Kind != models.EventStay || events[2].LocationName != "Office" {
		t.Errorf("after replace got %+v", events)
	}

	other, err := timeline.ListEvents(ctx, userB, models.TimelineFilter{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other user sees %d events", len(other))
	}
}

func TestTripRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if _, err := NewTimelineRepository(db).ReplaceRange(ctx, userA, time.Time{}, time.Time{}, sampleTimeline()); err != nil {
		t.Fatalf("ReplaceRange() error = %v", err)
	}
	trips := NewTripRepository(db)

	stored, err := trips.FindTripsByUser(ctx, userA)
	if err != nil {
		t.Fatalf("FindTripsByUser() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d trips, want 1", len(stored))
	}
	trip := stored[0]
	if trip.MovementType != models.ModeCar || trip.DurationSeconds != 180 || trip.SampleCount != 2 {
		t.Errorf("stored trip = %+v", trip)
	}
	if trip.PathGeoJSON == "" || trip.AlgoVersion != AlgoVersion {
		t.Errorf("path %q version %q, want encoded path and %s", trip.PathGeoJSON, trip.AlgoVersion, AlgoVersion)
	}

	if err := trips.UpdateTravelMode(ctx, trip.ID, models.ModeWalk); err != nil {
		t.Fatalf("UpdateTravelMode() error = %v", err)
	}
	got, err := trips.GetByID(ctx, userA, trip.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.MovementType != models.ModeWalk || got.DistanceMeters != trip.DistanceMeters {
		t.Errorf("updated trip = %+v, want WALK and unchanged distance", got)
	}

	if _, err := trips.GetByID(ctx, userB, trip.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() for other user error = %v, want ErrNotFound", err)
	}
	if err := trips.UpdateTravelMode(ctx, trip.ID+100, models.ModeCar); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTravelMode() on missing trip error = %v, want ErrNotFound", err)
	}
}

func TestAnalysisTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisTaskRepository(openTestDB(t))

	task := &models.AnalysisTask{SkillName: "timeline_regeneration", UserID: userA.String(), ParamsJSON: `{"from":0}`}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected task id to be set")
	}

	if err := repo.MarkRunning(ctx, task.ID, 120); err != nil {
		t.Fatalf("MarkRunning() error = %v", err)
	}
	if err := repo.UpdateProgress(ctx, task.ID, 60, 50); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}
	got, err := repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != models.TaskStatusRunning || got.TotalPoints != 120 || got.ProcessedPoints != 60 || got.StartedAt == nil {
		t.Errorf("running task = %+v", got)
	}

	if err := repo.MarkCompleted(ctx, task.ID, `{"stays":1}`); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	got, err = repo.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.IsTerminal() || got.ProgressPercent != 100 || got.ResultSummary != `{"stays":1}` || got.CompletedAt == nil {
		t.Errorf("completed task = %+v", got)
	}

	if _, err := repo.GetByID(ctx, task.ID+1); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() on missing task error = %v, want ErrNotFound", err)
	}
}
