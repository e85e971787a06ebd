package model

import (
	"time"

	"gorm.io/gorm"
)

// NurseAvailability is one availability slot for a nurse on a given
// date. Date and times are stored as plain strings ("2006-01-02" and
// "15:04") because they are matched textually against extracted shift
// requests, not as calendar values.
type NurseAvailability struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID   string         `json:"tenant_id" gorm:"type:varchar(64);index"`
	NurseID    uint           `json:"nurse_id" gorm:"not null;index"`
	NurseName  string         `json:"nurse_name" gorm:"type:varchar(255)"`
	Date       string         `json:"date" gorm:"type:varchar(10);not null;index"`
	StartTime  string         `json:"start_time" gorm:"type:varchar(5)"`
	EndTime    string         `json:"end_time" gorm:"type:varchar(5)"`
	Unit       string         `json:"unit" gorm:"type:varchar(255)"`
	Grade      string         `json:"grade" gorm:"type:varchar(255)"`
	IsAssigned bool           `json:"is_assigned" gorm:"default:false;index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for NurseAvailability
func (NurseAvailability) TableName() string {
	return "nurse_availability"
}
