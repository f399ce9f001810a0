package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TripAlgorithm selects how consecutive trips between two stays are post-processed
type TripAlgorithm int

const (
	// AlgorithmSingle always merges consecutive trips into one
	AlgorithmSingle TripAlgorithm = iota
	// AlgorithmMultiple keeps walk/drive segments apart when the mode change is evident
	AlgorithmMultiple
)

func (a TripAlgorithm) String() string {
	switch a {
	case AlgorithmMultiple:
		return "multiple"
	default:
		return "single"
	}
}

// ParseTripAlgorithm maps the configured selector to a TripAlgorithm
func ParseTripAlgorithm(s string) (TripAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		return AlgorithmSingle, nil
	case "multiple":
		return AlgorithmMultiple, nil
	default:
		return AlgorithmSingle, fmt.Errorf("unknown trip detection algorithm %q", s)
	}
}

// TimelineConfig holds every threshold the timeline engine reads.
// Speeds used by classification are km/h, point speeds are m/s.
type TimelineConfig struct {
	// Stay detection
	StaypointRadiusMeters       float64 `yaml:"staypoint_radius_meters" json:"staypointRadiusMeters"`
	StaypointMinDurationMinutes int     `yaml:"staypoint_min_duration_minutes" json:"staypointMinDurationMinutes"`

	// Accuracy filtering and validation
	EnableAccuracyValidation      bool    `yaml:"enable_accuracy_validation" json:"enableAccuracyValidation"`
	StaypointMaxAccuracyThreshold float64 `yaml:"staypoint_max_accuracy_threshold" json:"staypointMaxAccuracyThreshold"`
	StaypointMinAccuracyRatio     float64 `yaml:"staypoint_min_accuracy_ratio" json:"staypointMinAccuracyRatio"`

	// Trip stop detection
	TripStopSpeedThresholdKmh           float64 `yaml:"trip_stop_speed_threshold_kmh" json:"tripStopSpeedThresholdKmh"`
	TripArrivalMinDurationSeconds       int     `yaml:"trip_arrival_min_duration_seconds" json:"tripArrivalMinDurationSeconds"`
	TripSustainedStopMinDurationSeconds int     `yaml:"trip_sustained_stop_min_duration_seconds" json:"tripSustainedStopMinDurationSeconds"`

	// Data gaps
	DataGapThresholdSeconds   int `yaml:"data_gap_threshold_seconds" json:"dataGapThresholdSeconds"`
	DataGapMinDurationSeconds int `yaml:"data_gap_min_duration_seconds" json:"dataGapMinDurationSeconds"`

	// Travel classification (km/h, km)
	WalkingMaxAvgSpeed float64 `yaml:"walking_max_avg_speed" json:"walkingMaxAvgSpeed"`
	WalkingMaxMaxSpeed float64 `yaml:"walking_max_max_speed" json:"walkingMaxMaxSpeed"`
	CarMinAvgSpeed     float64 `yaml:"car_min_avg_speed" json:"carMinAvgSpeed"`
	CarMinMaxSpeed     float64 `yaml:"car_min_max_speed" json:"carMinMaxSpeed"`
	ShortDistanceKm    float64 `yaml:"short_distance_km" json:"shortDistanceKm"`

	// Trip post-processing
	TripMinDistanceMeters  float64 `yaml:"trip_min_distance_meters" json:"tripMinDistanceMeters"`
	TripMinDurationMinutes int     `yaml:"trip_min_duration_minutes" json:"tripMinDurationMinutes"`
	TripDetectionAlgorithm string  `yaml:"trip_detection_algorithm" json:"tripDetectionAlgorithm"`
}

// DefaultTimelineConfig returns the thresholds used when nothing is configured
func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		StaypointRadiusMeters:       50,
		StaypointMinDurationMinutes: 7,

		EnableAccuracyValidation:      true,
		StaypointMaxAccuracyThreshold: 60,
		StaypointMinAccuracyRatio:     0.5,

		TripStopSpeedThresholdKmh:           2.0,
		TripArrivalMinDurationSeconds:       90,
		TripSustainedStopMinDurationSeconds: 60,

		DataGapThresholdSeconds:   3600,
		DataGapMinDurationSeconds: 0,

		WalkingMaxAvgSpeed: 6.0,
		WalkingMaxMaxSpeed: 8.0,
		CarMinAvgSpeed:     8.0,
		CarMinMaxSpeed:     15.0,
		ShortDistanceKm:    1.0,

		TripMinDistanceMeters:  50,
		TripMinDurationMinutes: 1,
		TripDetectionAlgorithm: "single",
	}
}

// ErrInvalidTimelineConfig is wrapped by every Validate failure
var ErrInvalidTimelineConfig = errors.New("invalid timeline configuration")

// Validate rejects configurations that would make detection or classification meaningless
func (c TimelineConfig) Validate() error {
	var problems []string

	if c.StaypointRadiusMeters <= 0 {
		problems = append(problems, "staypoint radius must be positive")
	}
	if c.StaypointMinDurationMinutes < 0 {
		problems = append(problems, "staypoint min duration must not be negative")
	}
	if c.StaypointMinAccuracyRatio < 0 || c.StaypointMinAccuracyRatio > 1 {
		problems = append(problems, "staypoint min accuracy ratio must be within [0, 1]")
	}
	if c.TripStopSpeedThresholdKmh < 0 {
		problems = append(problems, "trip stop speed threshold must not be negative")
	}
	if c.TripArrivalMinDurationSeconds < 0 || c.TripSustainedStopMinDurationSeconds < 0 {
		problems = append(problems, "trip stop windows must not be negative")
	}
	if c.DataGapThresholdSeconds <= 0 {
		problems = append(problems, "data gap threshold must be positive")
	}
	if c.WalkingMaxAvgSpeed <= 0 || c.WalkingMaxMaxSpeed <= 0 {
		problems = append(problems, "walking speed thresholds must be positive")
	}
	if c.CarMinAvgSpeed <= 0 || c.CarMinMaxSpeed <= 0 {
		problems = append(problems, "car speed thresholds must be positive")
	}
	if c.ShortDistanceKm < 0 {
		problems = append(problems, "short distance must not be negative")
	}
	if _, err := ParseTripAlgorithm(c.TripDetectionAlgorithm); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimelineConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Algorithm returns the parsed trip algorithm, falling back to single
func (c TimelineConfig) Algorithm() TripAlgorithm {
	a, _ := ParseTripAlgorithm(c.TripDetectionAlgorithm)
	return a
}

// MinStayDuration returns the stay confirmation threshold
func (c TimelineConfig) MinStayDuration() time.Duration {
	return time.Duration(c.StaypointMinDurationMinutes) * time.Minute
}

// DataGapThreshold returns the gap detection threshold
func (c TimelineConfig) DataGapThreshold() time.Duration {
	return time.Duration(c.DataGapThresholdSeconds) * time.Second
}

// DataGapMinDuration returns the shortest gap that is emitted as an event
func (c TimelineConfig) DataGapMinDuration() time.Duration {
	return time.Duration(c.DataGapMinDurationSeconds) * time.Second
}

// ArrivalMinDuration returns the span a clustered slow window must cover
func (c TimelineConfig) ArrivalMinDuration() time.Duration {
	return time.Duration(c.TripArrivalMinDurationSeconds) * time.Second
}

// SustainedStopMinDuration returns the span a uniformly slow window must cover
func (c TimelineConfig) SustainedStopMinDuration() time.Duration {
	return time.Duration(c.TripSustainedStopMinDurationSeconds) * time.Second
}

// StopSpeedThresholdMps returns the stop speed threshold in m/s
func (c TimelineConfig) StopSpeedThresholdMps() float64 {
	return c.TripStopSpeedThresholdKmh / 3.6
}

// TripMinDuration returns the shortest merged trip considered valid
func (c TimelineConfig) TripMinDuration() time.Duration {
	return time.Duration(c.TripMinDurationMinutes) * time.Minute
}

// AccuracyValidationEnabled reports whether stays are checked against the accuracy ratio
func (c TimelineConfig) AccuracyValidationEnabled() bool {
	return c.EnableAccuracyValidation && c.StaypointMaxAccuracyThreshold > 0 && c.StaypointMinAccuracyRatio > 0
}

// LoadTimelineFile reads thresholds from a YAML file on top of the defaults
func LoadTimelineFile(path string) (TimelineConfig, error) {
	cfg := DefaultTimelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read timeline config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse timeline config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides thresholds from TIMELINE_* environment variables
func (c *TimelineConfig) ApplyEnv() {
	c.StaypointRadiusMeters = getEnvFloat("TIMELINE_STAYPOINT_RADIUS_METERS", c.StaypointRadiusMeters)
	c.StaypointMinDurationMinutes = getEnvInt("TIMELINE_STAYPOINT_MIN_DURATION_MINUTES", c.StaypointMinDurationMinutes)
	c.EnableAccuracyValidation = getEnvBool("TIMELINE_ENABLE_ACCURACY_VALIDATION", c.EnableAccuracyValidation)
	c.StaypointMaxAccuracyThreshold = getEnvFloat("TIMELINE_STAYPOINT_MAX_ACCURACY_THRESHOLD", c.StaypointMaxAccuracyThreshold)
	c.StaypointMinAccuracyRatio = getEnvFloat("TIMELINE_STAYPOINT_MIN_ACCURACY_RATIO", c.StaypointMinAccuracyRatio)
	c.TripStopSpeedThresholdKmh = getEnvFloat("TIMELINE_TRIP_STOP_SPEED_THRESHOLD_KMH", c.TripStopSpeedThresholdKmh)
	c.TripArrivalMinDurationSeconds = getEnvInt("TIMELINE_TRIP_ARRIVAL_MIN_DURATION_SECONDS", c.TripArrivalMinDurationSeconds)
	c.TripSustainedStopMinDurationSeconds = getEnvInt("TIMELINE_TRIP_SUSTAINED_STOP_MIN_DURATION_SECONDS", c.TripSustainedStopMinDurationSeconds)
	c.DataGapThresholdSeconds = getEnvInt("TIMELINE_DATA_GAP_THRESHOLD_SECONDS", c.DataGapThresholdSeconds)
	c.DataGapMinDurationSeconds = getEnvInt("TIMELINE_DATA_GAP_MIN_DURATION_SECONDS", c.DataGapMinDurationSeconds)
	c.WalkingMaxAvgSpeed = getEnvFloat("TIMELINE_WALKING_MAX_AVG_SPEED", c.WalkingMaxAvgSpeed)
	c.WalkingMaxMaxSpeed = getEnvFloat("TIMELINE_WALKING_MAX_MAX_SPEED", c.WalkingMaxMaxSpeed)
	c.CarMinAvgSpeed = getEnvFloat("TIMELINE_CAR_MIN_AVG_SPEED", c.CarMinAvgSpeed)
	c.CarMinMaxSpeed = getEnvFloat("TIMELINE_CAR_MIN_MAX_SPEED", c.CarMinMaxSpeed)
	c.ShortDistanceKm = getEnvFloat("TIMELINE_SHORT_DISTANCE_KM", c.ShortDistanceKm)
	c.TripMinDistanceMeters = getEnvFloat("TIMELINE_TRIP_MIN_DISTANCE_METERS", c.TripMinDistanceMeters)
	c.TripMinDurationMinutes = getEnvInt("TIMELINE_TRIP_MIN_DURATION_MINUTES", c.TripMinDurationMinutes)
	c.TripDetectionAlgorithm = getEnv("TIMELINE_TRIP_DETECTION_ALGORITHM", c.TripDetectionAlgorithm)
}
