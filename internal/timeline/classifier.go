package timeline

import (
	"time"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
)

const (
	// tolerance above the walking average for short trips inflated by GPS jitter (km/h)
	shortTripWalkingToleranceKmh = 1.0
	// steady-movement rule: low variance and at most this much above walking average (km/h)
	steadyWalkingToleranceKmh = 2.0
	steadyVarianceLimit       = 10.0
	maxLowAccuracyForSteady   = 5
	// stop-and-go rule: high variance and above walking average minus this (km/h)
	stopAndGoVarianceLimit = 25.0
	stopAndGoWalkingMargin = 1.0
)

// Classifier maps trip metrics to a travel mode
type Classifier struct {
	cfg config.TimelineConfig
}

// NewClassifier creates a classifier bound to the given thresholds
func NewClassifier(cfg config.TimelineConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify picks the statistics-based path when the statistics are usable
// and the distance/duration path otherwise
func (c *Classifier) Classify(st models.TripGpsStatistics, distanceMeters float64, duration time.Duration) models.TravelMode {
	if st.HasValidData() {
		return c.classifyWithStatistics(st, distanceMeters, duration)
	}
	return c.classifyBaseline(distanceMeters, duration)
}

func (c *Classifier) classifyWithStatistics(st models.TripGpsStatistics, distanceMeters float64, duration time.Duration) models.TravelMode {
	avgKmh := st.AvgSpeed * 3.6
	maxKmh := st.MaxSpeed * 3.6
	distanceKm := distanceMeters / 1000

	if avgKmh <= c.cfg.WalkingMaxAvgSpeed && maxKmh <= c.cfg.WalkingMaxMaxSpeed {
		return models.ModeWalk
	}

	if avgKmh > c.cfg.CarMinAvgSpeed || maxKmh > c.cfg.CarMinMaxSpeed {
		return models.ModeCar
	}

	if distanceKm <= c.cfg.ShortDistanceKm &&
		avgKmh <= c.cfg.WalkingMaxAvgSpeed+shortTripWalkingToleranceKmh &&
		maxKmh <= c.cfg.WalkingMaxMaxSpeed {
		return models.ModeWalk
	}

	if st.SpeedVariance < steadyVarianceLimit &&
		avgKmh <= c.cfg.WalkingMaxAvgSpeed+steadyWalkingToleranceKmh &&
		st.LowAccuracyPoints < maxLowAccuracyForSteady {
		return models.ModeWalk
	}

	if st.SpeedVariance > stopAndGoVarianceLimit && avgKmh > c.cfg.WalkingMaxAvgSpeed-stopAndGoWalkingMargin {
		return models.ModeCar
	}

	return c.classifyBaseline(distanceMeters, duration)
}

// classifyBaseline serves legacy rows and degenerate input without speed samples
func (c *Classifier) classifyBaseline(distanceMeters float64, duration time.Duration) models.TravelMode {
	if duration <= 0 || distanceMeters < 0 {
		return models.ModeUnknown
	}

	distanceKm := distanceMeters / 1000
	avgKmh := distanceKm / duration.Hours()

	if avgKmh > c.cfg.CarMinAvgSpeed {
		return models.ModeCar
	}
	if avgKmh <= c.cfg.WalkingMaxAvgSpeed {
		return models.ModeWalk
	}
	if distanceKm <= c.cfg.ShortDistanceKm && avgKmh <= c.cfg.WalkingMaxAvgSpeed+shortTripWalkingToleranceKmh {
		return models.ModeWalk
	}

	return models.ModeUnknown
}
