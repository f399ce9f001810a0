package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/records-timeline/internal/analysis"
	"github.com/jengzang/records-timeline/internal/middleware"
	"github.com/jengzang/records-timeline/internal/repository"
	"github.com/jengzang/records-timeline/pkg/response"
)

// AnalysisTaskHandler handles HTTP requests for analysis tasks
type AnalysisTaskHandler struct {
	runner *analysis.Runner
}

// NewAnalysisTaskHandler creates a new analysis task handler
func NewAnalysisTaskHandler(runner *analysis.Runner) *AnalysisTaskHandler {
	return &AnalysisTaskHandler{runner: runner}
}

// GetTask retrieves a task by ID
// GET /api/v1/tasks/:id
func (h *AnalysisTaskHandler) GetTask(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID", err)
		return
	}

	task, err := h.runner.GetTask(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "Task not found")
			return
		}
		response.InternalError(c, "Failed to get task", err)
		return
	}

	// tasks of other users are reported as missing
	if task.UserID != userID.String() {
		response.NotFound(c, "Task not found")
		return
	}

	response.Success(c, task)
}

// ListSkills returns the skills a task can be submitted for
// GET /api/v1/tasks/skills
func (h *AnalysisTaskHandler) ListSkills(c *gin.Context) {
	response.Success(c, analysis.SkillNames())
}
