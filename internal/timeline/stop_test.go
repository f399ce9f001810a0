package timeline

import (
	"testing"
	"time"

	"github.com/jengzang/records-timeline/internal/models"
)

func stopRun(points []models.GPSPoint) *run {
	cfg := testConfig()
	r := newRun(cfg, NewFinalizer(cfg, nil), nil)
	r.state.Mode = ModeInTrip
	r.state.Seed(points...)
	return r
}

func TestDetectStopArrival(t *testing.T) {
	lat, lon := offsetEast(40, -73, 600)
	points := []models.GPSPoint{
		at(0, 40, -73, 12),
		at(30*time.Second, 40.0001, -73, 12),
		at(60*time.Second, lat, lon, 0.3),
		at(105*time.Second, lat, lon, 0.2),
		at(150*time.Second, lat, lon, 0),
	}

	idx, ok := stopRun(points).detectStop()
	if !ok || idx != 2 {
		t.Errorf("detectStop() = (%d, %v), want (2, true)", idx, ok)
	}
}

func TestDetectStopArrivalTakesPrecedence(t *testing.T) {
	// Four slow points; the first one is far from the others.
	destLat, destLon := offsetEast(40, -73, 800)
	farLat, farLon := offsetEast(40, -73, 600)

	build := func(arrivalSpan time.Duration) []models.GPSPoint {
		return []models.GPSPoint{
			at(0, 40, -73, 12),
			at(30*time.Second, farLat, farLon, 0.4),
			at(60*time.Second, destLat, destLon, 0),
			at(60*time.Second+arrivalSpan/2, destLat, destLon, 0),
			at(60*time.Second+arrivalSpan, destLat, destLon, 0),
		}
	}

	// Both rules fire; the arrival window start wins.
	idx, ok := stopRun(build(90 * time.Second)).detectStop()
	if !ok || idx != 2 {
		t.Errorf("with 90s arrival window: detectStop() = (%d, %v), want (2, true)", idx, ok)
	}

	// Arrival window too short; the sustained stop reaches further back.
	idx, ok = stopRun(build(80 * time.Second)).detectStop()
	if !ok || idx != 1 {
		t.Errorf("with 80s arrival window: detectStop() = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestDetectStopSustainedBoundary(t *testing.T) {
	build := func(span time.Duration) []models.GPSPoint {
		return []models.GPSPoint{
			at(0, 40, -73, 12),
			at(30*time.Second, 40.002, -73, 12),
			at(60*time.Second, 40.004, -73, 0.1),
			at(60*time.Second+span, 40.008, -73, 0.1),
		}
	}

	if idx, ok := stopRun(build(59 * time.Second)).detectStop(); ok {
		t.Errorf("59s of slow movement must not stop the trip, got index %d", idx)
	}
	if idx, ok := stopRun(build(60 * time.Second)).detectStop(); !ok || idx != 2 {
		t.Errorf("detectStop() = (%d, %v), want (2, true)", idx, ok)
	}
}

func TestDetectStopNeedsThreePoints(t *testing.T) {
	points := []models.GPSPoint{
		at(0, 40, -73, 0),
		at(5*time.Minute, 40, -73, 0),
	}
	if _, ok := stopRun(points).detectStop(); ok {
		t.Error("stop detection must wait for three points")
	}
}

func TestDetectStopDerivesMissingSpeed(t *testing.T) {
	points := []models.GPSPoint{
		at(0, 40, -73, 12),
		at(30*time.Second, 40.003, -73, -1),
		at(60*time.Second, 40.006, -73, -1),
		at(120*time.Second, 40.009, -73, -1),
	}
	// Derived speeds are about 11 and 5.5 m/s, far above the stop threshold.
	if _, ok := stopRun(points).detectStop(); ok {
		t.Error("derived speeds should keep the trip going")
	}
}
