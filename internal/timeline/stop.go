package timeline

import (
	"math"

	"github.com/jengzang/records-timeline/internal/models"
)

// arrivalWindowSize is the number of trailing points checked for an arrival
const arrivalWindowSize = 3

// detectStop looks for the end of the current trip.
// It returns the index of the first stopped point in the buffer.
// An arrival (clustered, slow trailing points) takes precedence over a
// sustained stop (a run of slow points of any spread).
func (r *run) detectStop() (int, bool) {
	points := r.state.ActivePoints
	n := len(points)
	if n < arrivalWindowSize {
		return 0, false
	}

	threshold := r.cfg.StopSpeedThresholdMps()
	last := points[n-1]

	windowStart := n - arrivalWindowSize
	arrived := true
	for i := windowStart; i < n; i++ {
		if points[i].DistanceTo(last) > r.cfg.StaypointRadiusMeters || pointSpeed(points, i) > threshold {
			arrived = false
			break
		}
	}
	if arrived && last.Timestamp.Sub(points[windowStart].Timestamp) >= r.cfg.ArrivalMinDuration() {
		return windowStart, true
	}

	start := n
	for i := n - 1; i >= 0 && pointSpeed(points, i) < threshold; i-- {
		start = i
	}
	if n-start >= 2 && last.Timestamp.Sub(points[start].Timestamp) >= r.cfg.SustainedStopMinDuration() {
		return start, true
	}

	return 0, false
}

// pointSpeed returns the reported speed or one derived from the previous point.
// A point with neither counts as moving.
func pointSpeed(points []models.GPSPoint, i int) float64 {
	p := points[i]
	if p.HasSpeed() {
		return p.Speed
	}
	if i == 0 {
		return math.Inf(1)
	}
	prev := points[i-1]
	dt := p.Timestamp.Sub(prev.Timestamp).Seconds()
	if dt <= 0 {
		return math.Inf(1)
	}
	return prev.DistanceTo(p) / dt
}
