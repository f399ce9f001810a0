package models

// TripGpsStatistics summarizes the speed profile of a trip.
// Speeds are in m/s; SpeedVariance is in (m/s)².
type TripGpsStatistics struct {
	AvgSpeed          float64 `json:"avgSpeed"`
	MaxSpeed          float64 `json:"maxSpeed"`
	SpeedVariance     float64 `json:"speedVariance"`
	LowAccuracyPoints int     `json:"lowAccuracyPoints"`
	SampleCount       int     `json:"sampleCount"`
}

// EmptyTripGpsStatistics is returned when no point carried a usable speed
func EmptyTripGpsStatistics() TripGpsStatistics {
	return TripGpsStatistics{}
}

// HasValidData reports whether the enhanced classification path may trust the statistics
func (s TripGpsStatistics) HasValidData() bool {
	return s.SampleCount > 0 && (s.AvgSpeed > 0 || s.MaxSpeed > 0)
}
