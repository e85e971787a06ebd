package model

import (
	"time"

	"gorm.io/gorm"
)

// Email log statuses. Every processed email ends in exactly one of
// these; "pending" marks entries waiting for a send (auto-response
// disabled) or re-queued for retry by the sweep.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusBlocked = "blocked"
)

// Classification labels returned by the classifier.
const (
	ClassificationShiftRequest = "nhs_shift_asking"
	ClassificationOther        = "other"
)

// EmailLog is the system of record for pipeline outcomes. The
// (sender_email, subject) pair doubles as the idempotency key: an
// existing row means the email was already processed, unless its
// status is pending, in which case the row is updated in place on
// the retry pass.
type EmailLog struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID       string         `json:"tenant_id" gorm:"type:varchar(64);index"`
	SenderEmail    string         `json:"sender_email" gorm:"type:varchar(255);not null;index"`
	SenderName     string         `json:"sender_name" gorm:"type:varchar(255)"`
	Subject        string         `json:"subject" gorm:"type:varchar(500);index"`
	Body           string         `json:"body" gorm:"type:text"`
	Status         string         `json:"status" gorm:"type:varchar(20);not null;index"`
	Classification string         `json:"classification" gorm:"type:varchar(50)"`
	ShiftDate      string         `json:"shift_date" gorm:"type:varchar(10)"`
	ShiftStart     string         `json:"shift_start" gorm:"type:varchar(5)"`
	ShiftEnd       string         `json:"shift_end" gorm:"type:varchar(5)"`
	ShiftUnit      string         `json:"shift_unit" gorm:"type:varchar(255)"`
	ShiftGrade     string         `json:"shift_grade" gorm:"type:varchar(255)"`
	MatchedNurseID *uint          `json:"matched_nurse_id" gorm:"index"`
	ResponseBody   string         `json:"response_body" gorm:"type:text"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	RetryCount     int            `json:"retry_count" gorm:"default:0"`
	ErrorMessage   string         `json:"error_message" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for EmailLog
func (EmailLog) TableName() string {
	return "email_logs"
}
