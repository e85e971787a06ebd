package model

import (
	"time"

	"gorm.io/gorm"
)

// InboundEmail is a message synced from the mail provider. Rows are
// immutable once written; the pipeline only reads them.
type InboundEmail struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID   string         `json:"tenant_id" gorm:"type:varchar(64);index"`
	MessageID  string         `json:"message_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	FromEmail  string         `json:"from_email" gorm:"type:varchar(255);not null;index"`
	FromName   string         `json:"from_name" gorm:"type:varchar(255)"`
	Subject    string         `json:"subject" gorm:"type:varchar(500)"`
	Body       string         `json:"body" gorm:"type:text"`
	Preview    string         `json:"preview" gorm:"type:varchar(255)"`
	ReceivedAt time.Time      `json:"received_at"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for InboundEmail
func (InboundEmail) TableName() string {
	return "inbound_emails"
}
