package models

import "time"

// EventKind identifies the variant of a TimelineEvent
type EventKind string

// EventKind constants
const (
	EventStay    EventKind = "STAY"
	EventTrip    EventKind = "TRIP"
	EventDataGap EventKind = "DATA_GAP"
)

// UnknownLocationName is the display name given to stays nothing could resolve
const UnknownLocationName = "Unknown Location"

// TimelineEvent is one of *Stay, *Trip or *DataGap.
// The unexported method keeps the set closed so type switches stay exhaustive.
type TimelineEvent interface {
	Kind() EventKind
	StartTime() time.Time
	EndTime() time.Time
	timelineEvent()
}

// Stay is a period spent within a bounded radius
type Stay struct {
	Start        time.Time     `json:"startTime"`
	Duration     time.Duration `json:"duration"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	PointCount   int           `json:"pointCount"`
	LocationName string        `json:"locationName,omitempty"`
	FavoriteID   *int64        `json:"favoriteId,omitempty"`
	GeocodingID  *int64        `json:"geocodingId,omitempty"`
}

func (s *Stay) Kind() EventKind      { return EventStay }
func (s *Stay) StartTime() time.Time { return s.Start }
func (s *Stay) EndTime() time.Time   { return s.Start.Add(s.Duration) }
func (s *Stay) timelineEvent()       {}

// Coordinate returns the stay centroid
func (s *Stay) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Trip is movement between two places
type Trip struct {
	Start          time.Time         `json:"startTime"`
	Duration       time.Duration     `json:"duration"`
	DistanceMeters float64           `json:"distanceMeters"`
	TravelMode     TravelMode        `json:"travelMode"`
	Statistics     TripGpsStatistics `json:"statistics"`
	StartPoint     GPSPoint          `json:"startPoint"`
	EndPoint       GPSPoint          `json:"endPoint"`
	Path           []GPSPoint        `json:"path,omitempty"`
}

func (t *Trip) Kind() EventKind      { return EventTrip }
func (t *Trip) StartTime() time.Time { return t.Start }
func (t *Trip) EndTime() time.Time   { return t.Start.Add(t.Duration) }
func (t *Trip) timelineEvent()       {}

// DataGap is an interval without samples where continuity cannot be assumed
type DataGap struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

func (g *DataGap) Kind() EventKind      { return EventDataGap }
func (g *DataGap) StartTime() time.Time { return g.Start }
func (g *DataGap) EndTime() time.Time   { return g.End }
func (g *DataGap) timelineEvent()       {}

// Duration is derived from the gap bounds
func (g *DataGap) Duration() time.Duration {
	return g.End.Sub(g.Start)
}
