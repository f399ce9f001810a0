package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/records-timeline/internal/analysis"
	"github.com/jengzang/records-timeline/internal/middleware"
	"github.com/jengzang/records-timeline/internal/models"
	"github.com/jengzang/records-timeline/internal/service"
	"github.com/jengzang/records-timeline/internal/timeline"
	"github.com/jengzang/records-timeline/pkg/response"
)

// TimelineHandler handles HTTP requests for timelines
type TimelineHandler struct {
	service *service.TimelineService
	runner  *analysis.Runner
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(service *service.TimelineService, runner *analysis.Runner) *TimelineHandler {
	return &TimelineHandler{service: service, runner: runner}
}

// PreviewRequest is the body of a timeline preview.
// Config fields that are present override the server thresholds.
type PreviewRequest struct {
	Points []models.GPSPoint `json:"points"`
	Config json.RawMessage   `json:"config,omitempty"`
}

// EventResponse tags a timeline event with its kind
type EventResponse struct {
	Kind  models.EventKind     `json:"kind"`
	Event models.TimelineEvent `json:"event"`
}

// Preview handles POST /api/v1/timeline/preview
func (h *TimelineHandler) Preview(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", err)
		return
	}

	cfg := h.service.Config()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			response.BadRequest(c, "Invalid timeline config", err)
			return
		}
	}

	events, err := h.service.Preview(c.Request.Context(), userID, req.Points, cfg)
	if err != nil {
		if timeline.IsInvalidConfig(err) {
			response.BadRequest(c, "Invalid timeline config", err)
			return
		}
		response.InternalError(c, "Failed to build timeline", err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{Kind: e.Kind(), Event: e})
	}
	response.Success(c, out)
}

// GetTimeline handles GET /api/v1/timeline
func (h *TimelineHandler) GetTimeline(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var filter models.TimelineFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters", err)
		return
	}
	if filter.EndTime > 0 && filter.StartTime > filter.EndTime {
		response.BadRequest(c, "startTime must not be after endTime", nil)
		return
	}

	events, err := h.service.ListTimeline(c.Request.Context(), userID, filter)
	if err != nil {
		response.InternalError(c, "Failed to get timeline", err)
		return
	}

	response.Success(c, gin.H{
		"events": events,
		"total":  len(events),
	})
}

// Regenerate handles POST /api/v1/timeline/regenerate
func (h *TimelineHandler) Regenerate(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var params analysis.RegenerationParams
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			response.BadRequest(c, "Invalid request body", err)
			return
		}
	}
	if params.To > 0 && params.From > params.To {
		response.BadRequest(c, "from must not be after to", nil)
		return
	}

	task, err := h.runner.Submit(c.Request.Context(), analysis.SkillTimelineRegeneration, userID, params)
	if err != nil {
		response.InternalError(c, "Failed to start regeneration", err)
		return
	}

	response.Accepted(c, task)
}
