package models

import "time"

// PersistedTrip is a trip row as stored in the trips table
type PersistedTrip struct {
	ID     int64  `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Temporal info
	StartTime       int64 `json:"start_time" db:"start_time"`             // Unix timestamp
	DurationSeconds int64 `json:"duration_seconds" db:"duration_seconds"` // Duration in seconds

	// Endpoints
	StartLat float64 `json:"start_lat" db:"start_lat"`
	StartLon float64 `json:"start_lon" db:"start_lon"`
	EndLat   float64 `json:"end_lat" db:"end_lat"`
	EndLon   float64 `json:"end_lon" db:"end_lon"`

	// Trip characteristics
	DistanceMeters    float64    `json:"distance_meters" db:"distance_meters"`
	AvgSpeed          float64    `json:"avg_speed" db:"avg_gps_speed"` // m/s
	MaxSpeed          float64    `json:"max_speed" db:"max_gps_speed"` // m/s
	SpeedVariance     float64    `json:"speed_variance" db:"speed_variance"`
	LowAccuracyPoints int        `json:"low_accuracy_points" db:"low_accuracy_points"`
	SampleCount       int        `json:"sample_count" db:"sample_count"`
	MovementType      TravelMode `json:"movement_type" db:"movement_type"`

	PathGeoJSON string `json:"path_geojson,omitempty" db:"path_geojson"`

	// Metadata
	AlgoVersion string    `json:"algo_version,omitempty" db:"algo_version"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Statistics rebuilds the GPS statistics captured when the trip was generated
func (t PersistedTrip) Statistics() TripGpsStatistics {
	return TripGpsStatistics{
		AvgSpeed:          t.AvgSpeed,
		MaxSpeed:          t.MaxSpeed,
		SpeedVariance:     t.SpeedVariance,
		LowAccuracyPoints: t.LowAccuracyPoints,
		SampleCount:       t.SampleCount,
	}
}

// Duration returns the trip duration as a time.Duration
func (t PersistedTrip) Duration() time.Duration {
	return time.Duration(t.DurationSeconds) * time.Second
}

// TimelineFilter represents filter parameters for querying a stored timeline
type TimelineFilter struct {
	StartTime int64 `form:"startTime"` // Unix timestamp
	EndTime   int64 `form:"endTime"`   // Unix timestamp
}

// StoredEvent is one row of a stored timeline, flattened for the API
type StoredEvent struct {
	ID              int64      `json:"id"`
	Kind            EventKind  `json:"kind"`
	StartTime       int64      `json:"start_time"`
	EndTime         int64      `json:"end_time"`
	DurationSeconds int64      `json:"duration_seconds"`
	Latitude        float64    `json:"latitude,omitempty"`
	Longitude       float64    `json:"longitude,omitempty"`
	LocationName    string     `json:"location_name,omitempty"`
	DistanceMeters  float64    `json:"distance_meters,omitempty"`
	MovementType    TravelMode `json:"movement_type,omitempty"`
}
