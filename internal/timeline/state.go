package timeline

import (
	"time"

	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/spatial"
)

// ProcessorMode is the state of the streaming state machine
type ProcessorMode int

const (
	ModeUnknown ProcessorMode = iota
	ModePotentialStay
	ModeConfirmedStay
	ModeInTrip
)

func (m ProcessorMode) String() string {
	switch m {
	case ModePotentialStay:
		return "POTENTIAL_STAY"
	case ModeConfirmedStay:
		return "CONFIRMED_STAY"
	case ModeInTrip:
		return "IN_TRIP"
	default:
		return "UNKNOWN"
	}
}

// UserState is the mutable accumulator of one processing run.
// It is owned by a single run and never shared.
type UserState struct {
	Mode         ProcessorMode
	ActivePoints []models.GPSPoint
	LastPoint    *models.GPSPoint

	// running sums keep the centroid O(1) per point
	sumLat float64
	sumLon float64
}

// NewUserState creates an empty state in ModeUnknown
func NewUserState() *UserState {
	return &UserState{Mode: ModeUnknown}
}

// Reset clears the buffer and returns to ModeUnknown.
// LastPoint is kept so gap detection still works across the reset.
func (s *UserState) Reset() {
	s.Mode = ModeUnknown
	s.ActivePoints = nil
	s.sumLat, s.sumLon = 0, 0
}

// Seed replaces the buffer with a copy of points
func (s *UserState) Seed(points ...models.GPSPoint) {
	s.ActivePoints = append([]models.GPSPoint(nil), points...)
	s.sumLat, s.sumLon = 0, 0
	for _, p := range s.ActivePoints {
		s.sumLat += p.Latitude
		s.sumLon += p.Longitude
	}
}

// Append adds a point to the buffer
func (s *UserState) Append(p models.GPSPoint) {
	s.ActivePoints = append(s.ActivePoints, p)
	s.sumLat += p.Latitude
	s.sumLon += p.Longitude
}

// Centroid returns the mean position of the buffer
func (s *UserState) Centroid() spatial.Point {
	n := float64(len(s.ActivePoints))
	if n == 0 {
		return spatial.Point{}
	}
	return spatial.Point{Lat: s.sumLat / n, Lon: s.sumLon / n}
}

// Elapsed returns the time from the first buffered point to p
func (s *UserState) Elapsed(p models.GPSPoint) time.Duration {
	if len(s.ActivePoints) == 0 {
		return 0
	}
	return p.Timestamp.Sub(s.ActivePoints[0].Timestamp)
}

// Last returns the most recent buffered point
func (s *UserState) Last() (models.GPSPoint, bool) {
	if len(s.ActivePoints) == 0 {
		return models.GPSPoint{}, false
	}
	return s.ActivePoints[len(s.ActivePoints)-1], true
}

// MarkProcessed records p as the last processed point
func (s *UserState) MarkProcessed(p models.GPSPoint) {
	s.LastPoint = &p
}
