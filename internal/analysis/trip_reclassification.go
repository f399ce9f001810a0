package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/models"
)

// SkillTripReclassification recomputes travel modes of stored trips
const SkillTripReclassification = "trip_reclassification"

func init() {
	RegisterAnalyzer(SkillTripReclassification, NewTripReclassificationAnalyzer)
}

// TripReclassificationAnalyzer applies the current thresholds to stored trips
type TripReclassificationAnalyzer struct {
	*BaseAnalyzer
}

// NewTripReclassificationAnalyzer creates a new trip reclassification analyzer
func NewTripReclassificationAnalyzer(deps Dependencies) Analyzer {
	return &TripReclassificationAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(deps, SkillTripReclassification),
	}
}

// Analyze reclassifies every stored trip of the task's user
func (a *TripReclassificationAnalyzer) Analyze(ctx context.Context, task *models.AnalysisTask, progress ProgressFunc) (interface{}, error) {
	userID, err := uuid.Parse(task.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", task.UserID, err)
	}

	result, err := a.Deps.Reclassification.ReclassifyUserTrips(ctx, userID, a.Deps.Config)
	if err != nil {
		return nil, err
	}

	progress(result.Total, result.Total)
	return result, nil
}
