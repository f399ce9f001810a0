package timeline

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/spatial"
)

// ClassificationMode tells FinalizeTrip whether to classify immediately
type ClassificationMode int

const (
	// ClassifyInline computes the travel mode while finalizing
	ClassifyInline ClassificationMode = iota
	// ClassifyDeferred leaves the mode UNKNOWN for a later pass
	ClassifyDeferred
)

// Finalizer turns buffered points into timeline events
type Finalizer struct {
	cfg        config.TimelineConfig
	classifier *Classifier
	resolver   LocationResolver
}

// NewFinalizer creates a finalizer; resolver may be nil
func NewFinalizer(cfg config.TimelineConfig, resolver LocationResolver) *Finalizer {
	return &Finalizer{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
		resolver:   resolver,
	}
}

// FinalizeStay builds a Stay from the buffered points.
// Returns nil when the buffer is empty or fails accuracy validation.
// The location name is filled in later by ResolveStayLocations.
func (f *Finalizer) FinalizeStay(points []models.GPSPoint) *models.Stay {
	if len(points) == 0 {
		return nil
	}
	if !f.passesAccuracyValidation(points) {
		return nil
	}

	center := spatial.Centroid(toSpatial(points))
	first := points[0]
	last := points[len(points)-1]

	return &models.Stay{
		Start:      first.Timestamp,
		Duration:   last.Timestamp.Sub(first.Timestamp),
		Latitude:   center.Lat,
		Longitude:  center.Lon,
		PointCount: len(points),
	}
}

// passesAccuracyValidation requires enough of the points to be precise
func (f *Finalizer) passesAccuracyValidation(points []models.GPSPoint) bool {
	if !f.cfg.AccuracyValidationEnabled() {
		return true
	}

	accurate := 0
	for _, p := range points {
		if p.Accuracy <= f.cfg.StaypointMaxAccuracyThreshold {
			accurate++
		}
	}
	return float64(accurate)/float64(len(points)) >= f.cfg.StaypointMinAccuracyRatio
}

// FinalizeTrip builds a Trip from the buffered points.
// endpoint, when set and later than the last buffered point, closes the path.
// Returns nil when fewer than two points remain or the trip has no duration.
func (f *Finalizer) FinalizeTrip(points []models.GPSPoint, endpoint *models.GPSPoint, mode ClassificationMode) *models.Trip {
	path := append([]models.GPSPoint(nil), points...)
	if endpoint != nil && (len(path) == 0 || endpoint.Timestamp.After(path[len(path)-1].Timestamp)) {
		path = append(path, *endpoint)
	}
	if len(path) < 2 {
		return nil
	}

	first := path[0]
	last := path[len(path)-1]
	duration := last.Timestamp.Sub(first.Timestamp)
	if duration <= 0 {
		return nil
	}

	trip := &models.Trip{
		Start:          first.Timestamp,
		Duration:       duration,
		DistanceMeters: spatial.PathLength(toSpatial(path)),
		TravelMode:     models.ModeUnknown,
		Statistics:     CalculateStatistics(path),
		StartPoint:     first,
		EndPoint:       last,
		Path:           path,
	}
	if mode == ClassifyInline {
		trip.TravelMode = f.classifier.Classify(trip.Statistics, trip.DistanceMeters, trip.Duration)
	}
	return trip
}

// ResolveStayLocations names every unnamed stay with one batched resolver call.
// A failing or missing resolver degrades to UnknownLocationName.
func (f *Finalizer) ResolveStayLocations(ctx context.Context, userID uuid.UUID, events []models.TimelineEvent) {
	var stays []*models.Stay
	var coords []models.Coordinate
	seen := make(map[models.Coordinate]bool)

	for _, e := range events {
		stay, ok := e.(*models.Stay)
		if !ok || stay.LocationName != "" {
			continue
		}
		stays = append(stays, stay)
		c := stay.Coordinate()
		if !seen[c] {
			seen[c] = true
			coords = append(coords, c)
		}
	}
	if len(stays) == 0 {
		return
	}

	var resolved map[models.Coordinate]models.ResolvedLocation
	if f.resolver != nil {
		var err error
		resolved, err = f.resolver.ResolveLocationsBatch(ctx, userID, coords)
		if err != nil {
			log.Printf("[TimelineFinalizer] Warning: location resolution failed for user %s: %v", userID, err)
			resolved = nil
		}
	}

	for _, stay := range stays {
		loc, ok := resolved[stay.Coordinate()]
		if !ok || loc.Name == "" {
			stay.LocationName = models.UnknownLocationName
			continue
		}
		stay.LocationName = loc.Name
		stay.FavoriteID = loc.FavoriteID
		stay.GeocodingID = loc.GeocodingID
	}
}

func toSpatial(points []models.GPSPoint) []spatial.Point {
	out := make([]spatial.Point, len(points))
	for i, p := range points {
		out[i] = spatial.Point{Lat: p.Latitude, Lon: p.Longitude}
	}
	return out
}
