package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"shift-triage-go/internal/scheduler"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	scheduler *scheduler.Scheduler
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, s *scheduler.Scheduler) *Handlers {
	return &Handlers{db: db, scheduler: s}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/pipeline/run", h.RunPipeline)

		api.GET("/logs", h.GetLogs)
		api.GET("/logs/:id", h.GetLog)

		api.GET("/senders", h.GetApprovedSenders)
		api.POST("/senders", h.CreateApprovedSender)
		api.PUT("/senders/:id", h.UpdateApprovedSender)
		api.DELETE("/senders/:id", h.DeleteApprovedSender)

		api.GET("/availability", h.GetAvailability)
		api.POST("/availability", h.CreateAvailability)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}
