package timeline

import (
	"log"
	"time"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/spatial"
)

// Evidence that a run of trips really changed mode
const (
	walkEvidenceMinDistanceMeters = 100.0
	walkEvidenceMinDuration       = 2 * time.Minute
	carEvidenceMinDistanceMeters  = 200.0
	carEvidenceMinDuration        = 3 * time.Minute
)

// PostProcess merges runs of consecutive trips according to the configured algorithm.
// Trips left UNKNOWN by deferred classification are classified here.
// Non-trip events pass through unchanged and in order.
func PostProcess(events []models.TimelineEvent, cfg config.TimelineConfig, classifier *Classifier) []models.TimelineEvent {
	keepDistinct := neverKeepDistinct
	if cfg.Algorithm() == config.AlgorithmMultiple {
		keepDistinct = hasModeChangeEvidence
	}

	out := make([]models.TimelineEvent, 0, len(events))
	for i := 0; i < len(events); {
		if _, ok := events[i].(*models.Trip); !ok {
			out = append(out, events[i])
			i++
			continue
		}

		j := i
		var trips []*models.Trip
		for ; j < len(events); j++ {
			t, ok := events[j].(*models.Trip)
			if !ok {
				break
			}
			trips = append(trips, t)
		}

		if len(trips) == 1 || keepDistinct(trips) {
			for _, t := range trips {
				classifyPending(t, classifier)
				out = append(out, t)
			}
		} else {
			merged := mergeTrips(trips, classifier)
			switch {
			case isValidTrip(merged, cfg):
				out = append(out, merged)
			case i > 0 && isStay(events[i-1]) && j < len(events) && isStay(events[j]):
				log.Printf("[TimelinePostProcess] Keeping short merged trip at %s between two stays (%.0fm, %s)",
					merged.Start.Format(time.RFC3339), merged.DistanceMeters, merged.Duration)
				out = append(out, merged)
			default:
				log.Printf("[TimelinePostProcess] Dropping merged trip at %s below minimum size (%.0fm, %s)",
					merged.Start.Format(time.RFC3339), merged.DistanceMeters, merged.Duration)
			}
		}
		i = j
	}
	return out
}

// classifyPending assigns a mode to a trip finalized without one
func classifyPending(t *models.Trip, classifier *Classifier) {
	if t.TravelMode == models.ModeUnknown {
		t.TravelMode = classifier.Classify(t.Statistics, t.DistanceMeters, t.Duration)
	}
}

func neverKeepDistinct([]*models.Trip) bool {
	return false
}

// hasModeChangeEvidence requires both a real walk and a real drive in the run
func hasModeChangeEvidence(trips []*models.Trip) bool {
	var walked, drove bool
	for _, t := range trips {
		switch t.TravelMode {
		case models.ModeWalk:
			if t.DistanceMeters > walkEvidenceMinDistanceMeters && t.Duration >= walkEvidenceMinDuration {
				walked = true
			}
		case models.ModeCar:
			if t.DistanceMeters > carEvidenceMinDistanceMeters && t.Duration >= carEvidenceMinDuration {
				drove = true
			}
		}
	}
	return walked && drove
}

// mergeTrips combines a run into one trip and classifies it again.
// Distance follows the joined path; without paths it falls back to the sum.
func mergeTrips(trips []*models.Trip, classifier *Classifier) *models.Trip {
	first := trips[0]
	last := trips[len(trips)-1]

	var path []models.GPSPoint
	var summed float64
	for _, t := range trips {
		summed += t.DistanceMeters
		for _, p := range t.Path {
			if n := len(path); n > 0 && !p.Timestamp.After(path[n-1].Timestamp) {
				continue
			}
			path = append(path, p)
		}
	}

	merged := &models.Trip{
		Start:      first.Start,
		Duration:   last.EndTime().Sub(first.Start),
		StartPoint: first.StartPoint,
		EndPoint:   last.EndPoint,
		Path:       path,
		Statistics: models.EmptyTripGpsStatistics(),
	}
	if len(path) >= 2 {
		merged.DistanceMeters = spatial.PathLength(toSpatial(path))
		merged.Statistics = CalculateStatistics(path)
	} else {
		merged.DistanceMeters = summed
	}
	merged.TravelMode = classifier.Classify(merged.Statistics, merged.DistanceMeters, merged.Duration)
	return merged
}

func isValidTrip(t *models.Trip, cfg config.TimelineConfig) bool {
	return t.DistanceMeters >= cfg.TripMinDistanceMeters && t.Duration >= cfg.TripMinDuration()
}

func isStay(e models.TimelineEvent) bool {
	_, ok := e.(*models.Stay)
	return ok
}
