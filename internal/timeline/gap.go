package timeline

import "github.com/jengzang/records-timeline/internal/models"

// detectGap closes the open state when p arrives after too long a silence.
// The current point is not part of the closed event; it seeds the next one.
func (r *run) detectGap(p models.GPSPoint) bool {
	last := r.state.LastPoint
	if last == nil {
		return false
	}

	elapsed := p.Timestamp.Sub(last.Timestamp)
	if elapsed <= r.cfg.DataGapThreshold() {
		return false
	}

	switch r.state.Mode {
	case ModePotentialStay, ModeConfirmedStay:
		if stay := r.finalizer.FinalizeStay(r.state.ActivePoints); stay != nil {
			r.emit(stay)
		}
	case ModeInTrip:
		if trip := r.finalizer.FinalizeTrip(r.state.ActivePoints, last, r.classification); trip != nil {
			r.emit(trip)
		}
	}

	if elapsed >= r.cfg.DataGapMinDuration() {
		r.emit(&models.DataGap{Start: last.Timestamp, End: p.Timestamp})
	}

	r.state.Reset()
	return true
}
