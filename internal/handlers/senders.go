package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shift-triage-go/internal/model"
)

// GetApprovedSenders returns all approved senders
func (h *Handlers) GetApprovedSenders(c *gin.Context) {
	var senders []model.ApprovedSender
	query := h.db.Order("created_at desc")
	if tenant := c.Query("tenant_id"); tenant != "" {
		query = query.Where("tenant_id = ?", tenant)
	}
	if err := query.Find(&senders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch approved senders",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, senders)
}

// CreateApprovedSender allow-lists a sender address
func (h *Handlers) CreateApprovedSender(c *gin.Context) {
	var req model.ApprovedSenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	sender := model.ApprovedSender{
		TenantID: req.TenantID,
		Email:    req.Email,
		Active:   active,
	}
	if err := h.db.Create(&sender).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create approved sender",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusCreated, sender)
}

// UpdateApprovedSender updates an existing approved sender
func (h *Handlers) UpdateApprovedSender(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid_id", Message: "Invalid sender ID", Code: http.StatusBadRequest})
		return
	}
	var sender model.ApprovedSender
	if err := h.db.First(&sender, id).Error; err != nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "not_found", Message: "Sender not found", Code: http.StatusNotFound})
		return
	}
	var req model.ApprovedSenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_error", Message: "Invalid request body", Code: http.StatusBadRequest})
		return
	}
	if req.Email != "" {
		sender.Email = req.Email
	}
	sender.TenantID = req.TenantID
	if req.Active != nil {
		sender.Active = *req.Active
	}
	if err := h.db.Save(&sender).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "database_error", Message: "Failed to update sender", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusOK, sender)
}

// DeleteApprovedSender removes a sender from the allow-list
func (h *Handlers) DeleteApprovedSender(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid_id", Message: "Invalid sender ID", Code: http.StatusBadRequest})
		return
	}
	if err := h.db.Delete(&model.ApprovedSender{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "database_error", Message: "Failed to delete sender", Code: http.StatusInternalServerError})
		return
	}
	c.Status(http.StatusNoContent)
}
