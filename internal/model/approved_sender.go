package model

import (
	"time"

	"gorm.io/gorm"
)

// ApprovedSender is an allow-listed email address. Only mail from an
// active approved sender for the matching tenant is processed. An empty
// tenant id marks a global (any-tenant) entry.
type ApprovedSender struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID  string         `json:"tenant_id" gorm:"type:varchar(64);index"`
	Email     string         `json:"email" gorm:"type:varchar(255);not null;index"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ApprovedSender
func (ApprovedSender) TableName() string {
	return "approved_senders"
}
