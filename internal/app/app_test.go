package app

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/database"
	"github.com/jengzang/records-timeline/internal/models"
)

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

const metersPerDegree = 6371000.0 * math.Pi / 180

// journey is a 10 minute stay, a 3 km drive east and a 10 minute stay
func journey(lat, lon float64) []models.GPSPoint {
	var points []models.GPSPoint
	at := func(offset time.Duration, meters, speed float64) {
		points = append(points, models.GPSPoint{
			Timestamp: baseTime.Add(offset),
			Latitude:  lat,
			Longitude: lon + meters/(metersPerDegree*math.Cos(lat*math.Pi/180)),
			Speed:     speed,
			Accuracy:  10,
		})
	}
	for i := 0; i < 21; i++ {
		at(time.Duration(i)*30*time.Second, 0, 0)
	}
	for i := 1; i <= 12; i++ {
		at(10*time.Minute+time.Duration(i)*20*time.Second, 250*float64(i), 12.5)
	}
	for i := 0; i < 21; i++ {
		at(870*time.Second+time.Duration(i)*30*time.Second, 3000, 0)
	}
	return points
}

func TestConcurrentRegenerateOnFileDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "timeline.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	a := New(db, config.DefaultTimelineConfig())

	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = uuid.New()
		if err := a.Points.InsertBatch(ctx, users[i], journey(40+float64(i)*0.1, -73)); err != nil {
			t.Fatalf("InsertBatch() error = %v", err)
		}
	}

	// twice per user so writers for the same user race as well
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for round := 0; round < 2; round++ {
		for _, userID := range users {
			userID := userID
			g.Go(func() error {
				result, err := a.Timeline.Regenerate(gctx, userID, time.Time{}, time.Time{})
				if err != nil {
					return fmt.Errorf("user %s: %w", userID, err)
				}
				if result.Stays != 2 || result.Trips != 1 || result.DataGaps != 0 {
					return fmt.Errorf("user %s: wrote %+v, want 2 stays and 1 trip", userID, result.ReplaceResult)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}

	want := []models.EventKind{models.EventStay, models.EventTrip, models.EventStay}
	for _, userID := range users {
		events, err := a.Timeline.ListTimeline(ctx, userID, models.TimelineFilter{})
		if err != nil {
			t.Fatalf("ListTimeline() error = %v", err)
		}
		if len(events) != len(want) {
			t.Errorf("user %s has %d stored events, want %d", userID, len(events), len(want))
			continue
		}
		for i, e := range events {
			if e.Kind != want[i] {
				t.Errorf("user %s event %d = %s, want %s", userID, i, e.Kind, want[i])
			}
		}
	}
}
