package timeline

import (
	"github.com/montanaflynn/stats"

	"github.com/jengzang/records-timeline/internal/models"
)

// Points reporting an accuracy worse than this count as low quality
const lowAccuracyThresholdMeters = 50.0

// CalculateStatistics reduces a path to its speed profile.
// Negative speeds mean "not reported" and are skipped rather than read as zero.
func CalculateStatistics(points []models.GPSPoint) models.TripGpsStatistics {
	speeds := make(stats.Float64Data, 0, len(points))
	lowAccuracy := 0

	for _, p := range points {
		if p.Accuracy > lowAccuracyThresholdMeters {
			lowAccuracy++
		}
		if p.HasSpeed() {
			speeds = append(speeds, p.Speed)
		}
	}

	if len(speeds) == 0 {
		return models.EmptyTripGpsStatistics()
	}

	avg, _ := stats.Mean(speeds)
	maxSpeed, _ := stats.Max(speeds)
	variance, _ := stats.PopulationVariance(speeds)

	return models.TripGpsStatistics{
		AvgSpeed:          avg,
		MaxSpeed:          maxSpeed,
		SpeedVariance:     variance,
		LowAccuracyPoints: lowAccuracy,
		SampleCount:       len(speeds),
	}
}
