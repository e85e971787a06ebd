package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shift-triage-go/internal/model"
)

// GetAvailability returns availability slots, optionally filtered by
// date and tenant.
func (h *Handlers) GetAvailability(c *gin.Context) {
	query := h.db.Order("date, start_time")
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if tenant := c.Query("tenant_id"); tenant != "" {
		query = query.Where("tenant_id = ?", tenant)
	}

	var slots []model.NurseAvailability
	if err := query.Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch availability",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// CreateAvailability adds an availability slot
func (h *Handlers) CreateAvailability(c *gin.Context) {
	var req model.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	slot := model.NurseAvailability{
		TenantID:  req.TenantID,
		NurseID:   req.NurseID,
		NurseName: req.NurseName,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Unit:      req.Unit,
		Grade:     req.Grade,
	}
	if err := h.db.Create(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create availability slot",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusCreated, slot)
}
