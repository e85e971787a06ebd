package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-triage-go/internal/model"
)

// RunPipeline triggers one triage batch and returns its summary.
func (h *Handlers) RunPipeline(c *gin.Context) {
	summary, err := h.scheduler.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, model.RunResponse{
			Processed: summary.Processed,
			Matched:   summary.Matched,
			Errors:    summary.Errors,
			Message:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, model.RunResponse{
		Processed: summary.Processed,
		Matched:   summary.Matched,
		Errors:    summary.Errors,
		Message:   summary.Message,
	})
}
