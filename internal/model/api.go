package model

import "time"

// ApprovedSenderRequest represents the request structure for creating/updating approved senders
type ApprovedSenderRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email" binding:"required,email"`
	Active   *bool  `json:"active"`
}

// AvailabilityRequest represents the request structure for creating availability slots
type AvailabilityRequest struct {
	TenantID  string `json:"tenant_id"`
	NurseID   uint   `json:"nurse_id" binding:"required"`
	NurseName string `json:"nurse_name"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Unit      string `json:"unit"`
	Grade     string `json:"grade"`
}

// RunResponse represents the result of a pipeline batch returned to callers
type RunResponse struct {
	Processed int    `json:"processed"`
	Matched   int    `json:"matched"`
	Errors    int    `json:"errors"`
	Message   string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
