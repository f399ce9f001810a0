package timeline

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
)

var (
	baseTime   = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	testUserID = uuid.MustParse("6f1c2d3e-4b5a-4c6d-8e7f-0a1b2c3d4e5f")
)

// metersPerDegree matches the sphere used by the distance functions
const metersPerDegree = 6371000.0 * math.Pi / 180

func at(offset time.Duration, lat, lon, speed float64) models.GPSPoint {
	return models.GPSPoint{
		Timestamp: baseTime.Add(offset),
		Latitude:  lat,
		Longitude: lon,
		Speed:     speed,
		Accuracy:  10,
	}
}

// offsetEast moves a coordinate the given distance east
func offsetEast(lat, lon, meters float64) (float64, float64) {
	return lat, lon + meters/(metersPerDegree*math.Cos(lat*math.Pi/180))
}

// offsetNorth moves a coordinate the given distance north
func offsetNorth(lat, lon, meters float64) (float64, float64) {
	return lat + meters/metersPerDegree, lon
}

// cluster returns count stationary points around (lat, lon) evenly spread over span.
// Positions wobble by a few meters.
func cluster(start time.Duration, span time.Duration, count int, lat, lon float64) []models.GPSPoint {
	points := make([]models.GPSPoint, 0, count)
	for i := 0; i < count; i++ {
		offset := start
		if count > 1 {
			offset += span * time.Duration(i) / time.Duration(count-1)
		}
		jitter := float64(i%5-2) * 0.00002
		points = append(points, at(offset, lat+jitter, lon-jitter, 0))
	}
	return points
}

// drive returns count points moving east from (lat, lon), one every interval
func drive(start, interval time.Duration, count int, lat, lon, stepMeters float64) []models.GPSPoint {
	speed := stepMeters / interval.Seconds()
	points := make([]models.GPSPoint, 0, count)
	for i := 1; i <= count; i++ {
		pLat, pLon := offsetEast(lat, lon, stepMeters*float64(i))
		points = append(points, at(start+interval*time.Duration(i), pLat, pLon, speed))
	}
	return points
}

func concat(parts ...[]models.GPSPoint) []models.GPSPoint {
	var out []models.GPSPoint
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func testConfig() config.TimelineConfig {
	return config.DefaultTimelineConfig()
}

type fakeFavorites struct {
	areas []models.FavoriteArea
	err   error
}

func (f *fakeFavorites) GetFavoriteAreas(ctx context.Context, userID uuid.UUID) ([]models.FavoriteArea, error) {
	return f.areas, f.err
}

type fakeResolver struct {
	names map[models.Coordinate]string
	err   error
	calls int
	seen  []models.Coordinate
}

func (f *fakeResolver) ResolveLocationsBatch(ctx context.Context, userID uuid.UUID, coords []models.Coordinate) (map[models.Coordinate]models.ResolvedLocation, error) {
	f.calls++
	f.seen = append(f.seen, coords...)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[models.Coordinate]models.ResolvedLocation)
	for _, c := range coords {
		if name, ok := f.names[c]; ok {
			out[c] = models.ResolvedLocation{Name: name}
		}
	}
	return out, nil
}

// resolveAll names every coordinate it is asked about
type resolveAll struct{ name string }

func (r resolveAll) ResolveLocationsBatch(ctx context.Context, userID uuid.UUID, coords []models.Coordinate) (map[models.Coordinate]models.ResolvedLocation, error) {
	out := make(map[models.Coordinate]models.ResolvedLocation, len(coords))
	id := int64(7)
	for _, c := range coords {
		out[c] = models.ResolvedLocation{Name: r.name, FavoriteID: &id}
	}
	return out, nil
}

var errUnavailable = errors.New("backend unavailable")

func kinds(events []models.TimelineEvent) []models.EventKind {
	out := make([]models.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}

func sameKinds(got []models.TimelineEvent, want ...models.EventKind) bool {
	k := kinds(got)
	if len(k) != len(want) {
		return false
	}
	for i := range k {
		if k[i] != want[i] {
			return false
		}
	}
	return true
}
