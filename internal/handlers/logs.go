package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shift-triage-go/internal/model"
)

// GetLogs returns email log entries, newest first. An optional status
// query parameter filters by outcome.
func (h *Handlers) GetLogs(c *gin.Context) {
	query := h.db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var logs []model.EmailLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetLog returns a single log by ID
func (h *Handlers) GetLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid_id", Message: "Invalid log ID", Code: http.StatusBadRequest})
		return
	}
	var log model.EmailLog
	if err := h.db.First(&log, id).Error; err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "not_found", Message: "Log not found", Code: http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, log)
}
