package models

import (
	"time"

	"github.com/jengzang/records-timeline/internal/spatial"
)

// GPSPoint is a single raw location sample
type GPSPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`              // m/s, negative when the device did not report one
	Accuracy  float64   `json:"accuracy"`           // meters, smaller is better
	Altitude  *float64  `json:"altitude,omitempty"` // meters
}

// DistanceTo returns the great-circle distance to other in meters
func (p GPSPoint) DistanceTo(other GPSPoint) float64 {
	return spatial.HaversineDistance(p.Latitude, p.Longitude, other.Latitude, other.Longitude)
}

// HasSpeed reports whether the sample carries a usable speed value
func (p GPSPoint) HasSpeed() bool {
	return p.Speed >= 0
}

// Coordinate returns the point position as a map-friendly coordinate
func (p GPSPoint) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Coordinate is a comparable lat/lon pair used as a lookup key
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ResolvedLocation is the display information returned for a coordinate
type ResolvedLocation struct {
	Name        string `json:"name"`
	FavoriteID  *int64 `json:"favoriteId,omitempty"`
	GeocodingID *int64 `json:"geocodingId,omitempty"`
}
