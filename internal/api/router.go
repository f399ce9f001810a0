package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/records-timeline/internal/config"
	"github.com/jengzang/records-timeline/internal/handler"
	"github.com/jengzang/records-timeline/internal/middleware"
)

// Handlers groups the HTTP handlers served under /api/v1
type Handlers struct {
	Timeline *handler.TimelineHandler
	Trips    *handler.TripHandler
	Tasks    *handler.AnalysisTaskHandler
}

// regenerations and reclassifications each start a background task
const (
	taskSubmitLimit  = 10
	taskSubmitWindow = time.Minute
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Timeline API is running",
		})
	})

	limiter := middleware.NewRateLimiter(taskSubmitLimit, taskSubmitWindow)
	limiter.StartCleanup(nil) // lives as long as the process
	submitLimit := middleware.RateLimit(limiter)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		// 时间线接口
		timeline := api.Group("/timeline")
		{
			timeline.GET("", h.Timeline.GetTimeline)
			timeline.POST("/preview", h.Timeline.Preview)
			timeline.POST("/regenerate", submitLimit, h.Timeline.Regenerate)
		}

		// 行程接口
		trips := api.Group("/trips")
		{
			trips.GET("/:id/geojson", h.Trips.GetTripGeoJSON)
			trips.POST("/reclassify", submitLimit, h.Trips.Reclassify)
		}

		// 分析任务接口
		tasks := api.Group("/tasks")
		{
			tasks.GET("/skills", h.Tasks.ListSkills)
			tasks.GET("/:id", h.Tasks.GetTask)
		}
	}

	return r
}
