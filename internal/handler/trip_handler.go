package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/records-timeline/internal/analysis"
	"github.com/jengzang/records-timeline/internal/middleware"
	"github.com/jengzang/records-timeline/internal/repository"
	"github.com/jengzang/records-timeline/internal/service"
	"github.com/jengzang/records-timeline/pkg/response"
)

// TripHandler handles HTTP requests for trips
type TripHandler struct {
	service *service.TripService
	runner  *analysis.Runner
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService, runner *analysis.Runner) *TripHandler {
	return &TripHandler{service: service, runner: runner}
}

// GetTripGeoJSON handles GET /api/v1/trips/:id/geojson
func (h *TripHandler) GetTripGeoJSON(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid trip ID", err)
		return
	}

	feature, err := h.service.GetTripFeature(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "Trip not found")
			return
		}
		response.InternalError(c, "Failed to get trip", err)
		return
	}

	// map clients read the feature as-is
	c.JSON(http.StatusOK, feature)
}

// Reclassify handles POST /api/v1/trips/reclassify
func (h *TripHandler) Reclassify(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	task, err := h.runner.Submit(c.Request.Context(), analysis.SkillTripReclassification, userID, nil)
	if err != nil {
		response.InternalError(c, "Failed to start reclassification", err)
		return
	}

	response.Accepted(c, task)
}
