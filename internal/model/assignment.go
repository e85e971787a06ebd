package model

import (
	"time"

	"gorm.io/gorm"
)

// ShiftAssignment links a nurse to a confirmed shift. One row is
// created per matched shift when the response email is actually sent,
// never before.
type ShiftAssignment struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID   string         `json:"tenant_id" gorm:"type:varchar(64);index"`
	NurseID    uint           `json:"nurse_id" gorm:"not null;index"`
	Date       string         `json:"date" gorm:"type:varchar(10);not null"`
	StartTime  string         `json:"start_time" gorm:"type:varchar(5)"`
	EndTime    string         `json:"end_time" gorm:"type:varchar(5)"`
	Unit       string         `json:"unit" gorm:"type:varchar(255)"`
	Grade      string         `json:"grade" gorm:"type:varchar(255)"`
	EmailLogID uint           `json:"email_log_id" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// Relationship
	EmailLog *EmailLog `json:"email_log,omitempty" gorm:"foreignKey:EmailLogID"`
}

// TableName specifies the table name for ShiftAssignment
func (ShiftAssignment) TableName() string {
	return "shift_assignments"
}
