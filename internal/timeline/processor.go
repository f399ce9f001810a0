package timeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
)

// ErrInvalidConfig is returned (wrapped in a RunError) when the thresholds cannot be used
var ErrInvalidConfig = config.ErrInvalidTimelineConfig

// FavoriteAreaProvider loads the user's favorite areas
type FavoriteAreaProvider interface {
	GetFavoriteAreas(ctx context.Context, userID uuid.UUID) ([]models.FavoriteArea, error)
}

// LocationResolver names stay coordinates in one batch.
// Coordinates missing from the result are treated as unresolved.
type LocationResolver interface {
	ResolveLocationsBatch(ctx context.Context, userID uuid.UUID, coords []models.Coordinate) (map[models.Coordinate]models.ResolvedLocation, error)
}

// RunError carries the user and time range of a failed run
type RunError struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("timeline run for user %s (%s - %s) failed: %v",
		e.UserID, e.From.Format(time.RFC3339), e.To.Format(time.RFC3339), e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Processor converts a user's GPS points into timeline events.
// It keeps no per-run state, so one instance may serve concurrent runs.
type Processor struct {
	favorites FavoriteAreaProvider
	resolver  LocationResolver
}

// NewProcessor creates a processor; both collaborators may be nil
func NewProcessor(favorites FavoriteAreaProvider, resolver LocationResolver) *Processor {
	return &Processor{
		favorites: favorites,
		resolver:  resolver,
	}
}

// Process runs the full pipeline for one user over the given points:
// prefilter, stream through the state machine, close open state,
// resolve stay names and post-process consecutive trips.
func (p *Processor) Process(ctx context.Context, userID uuid.UUID, points []models.GPSPoint, cfg config.TimelineConfig) ([]models.TimelineEvent, error) {
	from, to := timeRange(points)
	if err := cfg.Validate(); err != nil {
		return nil, &RunError{UserID: userID, From: from, To: to, Err: err}
	}

	areas := p.loadFavoriteAreas(ctx, userID)
	filtered := prefilterPoints(points, cfg)

	finalizer := NewFinalizer(cfg, p.resolver)
	r := newRun(cfg, finalizer, areas)
	for _, point := range filtered {
		r.processPoint(point)
	}
	r.finalizeOpenState()

	finalizer.ResolveStayLocations(ctx, userID, r.events)
	events := PostProcess(r.events, cfg, finalizer.classifier)

	log.Printf("[TimelineProcessor] User %s: %d points (%d after filtering) -> %d events",
		userID, len(points), len(filtered), len(events))
	return events, nil
}

func (p *Processor) loadFavoriteAreas(ctx context.Context, userID uuid.UUID) []models.FavoriteArea {
	if p.favorites == nil {
		return nil
	}
	areas, err := p.favorites.GetFavoriteAreas(ctx, userID)
	if err != nil {
		log.Printf("[TimelineProcessor] Warning: failed to load favorite areas for user %s: %v", userID, err)
		return nil
	}
	return areas
}

// prefilterPoints drops imprecise samples and orders the rest by time.
// The sort is stable so equal timestamps keep their input order.
func prefilterPoints(points []models.GPSPoint, cfg config.TimelineConfig) []models.GPSPoint {
	out := make([]models.GPSPoint, 0, len(points))
	for _, p := range points {
		if cfg.StaypointMaxAccuracyThreshold > 0 && p.Accuracy > cfg.StaypointMaxAccuracyThreshold {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func timeRange(points []models.GPSPoint) (time.Time, time.Time) {
	var from, to time.Time
	for i, p := range points {
		if i == 0 || p.Timestamp.Before(from) {
			from = p.Timestamp
		}
		if i == 0 || p.Timestamp.After(to) {
			to = p.Timestamp
		}
	}
	return from, to
}

// IsInvalidConfig reports whether err came from a rejected configuration
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// run is the state of a single Process call
type run struct {
	cfg            config.TimelineConfig
	finalizer      *Finalizer
	classification ClassificationMode
	areas          []models.FavoriteArea
	state          *UserState
	events         []models.TimelineEvent

	// freshStay is set while the potential stay began the stream or followed a gap
	freshStay bool
}

func newRun(cfg config.TimelineConfig, finalizer *Finalizer, areas []models.FavoriteArea) *run {
	// merging reclassifies every trip when the single algorithm runs
	classification := ClassifyInline
	if cfg.Algorithm() == config.AlgorithmSingle {
		classification = ClassifyDeferred
	}

	return &run{
		cfg:            cfg,
		finalizer:      finalizer,
		classification: classification,
		areas:          areas,
		state:          NewUserState(),
	}
}

func (r *run) emit(e models.TimelineEvent) {
	r.events = append(r.events, e)
}

func (r *run) processPoint(p models.GPSPoint) {
	r.detectGap(p)

	switch r.state.Mode {
	case ModeUnknown:
		r.state.Mode = ModePotentialStay
		r.state.Seed(p)
		r.freshStay = true
	case ModePotentialStay, ModeConfirmedStay:
		r.handleStay(p)
	case ModeInTrip:
		r.handleTrip(p)
	}

	r.state.MarkProcessed(p)
}

func (r *run) handleStay(p models.GPSPoint) {
	center := r.state.Centroid()
	distance := p.DistanceTo(models.GPSPoint{Latitude: center.Lat, Longitude: center.Lon})
	within := distance <= r.cfg.StaypointRadiusMeters || r.sameFavoriteArea(center.Lat, center.Lon, p)

	if within {
		r.state.Append(p)
		if r.state.Mode == ModePotentialStay && r.state.Elapsed(p) >= r.cfg.MinStayDuration() {
			r.state.Mode = ModeConfirmedStay
		}
		return
	}

	// The trip departs from the last buffered point.
	departure, _ := r.state.Last()
	if r.state.Mode == ModeConfirmedStay || (r.freshStay && r.state.Elapsed(departure) > 0) {
		if stay := r.finalizer.FinalizeStay(r.state.ActivePoints); stay != nil {
			r.emit(stay)
		}
	}
	r.state.Mode = ModeInTrip
	r.state.Seed(departure, p)
	r.freshStay = false
}

func (r *run) handleTrip(p models.GPSPoint) {
	r.state.Append(p)

	stopStart, stopped := r.detectStop()
	if !stopped {
		return
	}

	active := r.state.ActivePoints
	if trip := r.finalizer.FinalizeTrip(active[:stopStart+1], nil, r.classification); trip != nil {
		r.emit(trip)
	}
	r.state.Mode = ModePotentialStay
	r.state.Seed(active[stopStart+1:]...)
}

// sameFavoriteArea reports whether the stay center and p share a favorite area
func (r *run) sameFavoriteArea(lat, lon float64, p models.GPSPoint) bool {
	for _, area := range r.areas {
		if area.Contains(lat, lon) && area.Contains(p.Latitude, p.Longitude) {
			return true
		}
	}
	return false
}

// finalizeOpenState closes whatever the stream ended in
func (r *run) finalizeOpenState() {
	switch r.state.Mode {
	case ModePotentialStay, ModeConfirmedStay:
		if stay := r.finalizer.FinalizeStay(r.state.ActivePoints); stay != nil {
			r.emit(stay)
		}
	case ModeInTrip:
		if trip := r.finalizer.FinalizeTrip(r.state.ActivePoints, nil, r.classification); trip != nil {
			r.emit(trip)
		}
	}
	r.state.Reset()
}
