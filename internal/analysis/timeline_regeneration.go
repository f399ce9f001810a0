package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/records-timeline/internal/models"
)

// SkillTimelineRegeneration rebuilds a user's stored timeline
const SkillTimelineRegeneration = "timeline_regeneration"

func init() {
	RegisterAnalyzer(SkillTimelineRegeneration, NewTimelineRegenerationAnalyzer)
}

// RegenerationParams bounds a regeneration; zero values leave a side open
type RegenerationParams struct {
	From int64 `json:"from,omitempty"` // Unix timestamp
	To   int64 `json:"to,omitempty"`   // Unix timestamp
}

// Range converts the params to time bounds
func (p RegenerationParams) Range() (time.Time, time.Time) {
	var from, to time.Time
	if p.From > 0 {
		from = time.Unix(p.From, 0).UTC()
	}
	if p.To > 0 {
		to = time.Unix(p.To, 0).UTC()
	}
	return from, to
}

// TimelineRegenerationAnalyzer runs the timeline engine over stored points
type TimelineRegenerationAnalyzer struct {
	*BaseAnalyzer
}

// NewTimelineRegenerationAnalyzer creates a new timeline regeneration analyzer
func NewTimelineRegenerationAnalyzer(deps Dependencies) Analyzer {
	return &TimelineRegenerationAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(deps, SkillTimelineRegeneration),
	}
}

// Analyze regenerates the timeline for the task's user and range
func (a *TimelineRegenerationAnalyzer) Analyze(ctx context.Context, task *models.AnalysisTask, progress ProgressFunc) (interface{}, error) {
	userID, err := uuid.Parse(task.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", task.UserID, err)
	}

	var params RegenerationParams
	if task.ParamsJSON != "" {
		if err := json.Unmarshal([]byte(task.ParamsJSON), &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	from, to := params.Range()
	result, err := a.Deps.Timeline.Regenerate(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	progress(result.Points, result.Points)
	return result, nil
}
