package model

import (
	"time"

	"gorm.io/gorm"
)

// Prompt names used by the pipeline. Classifier and extractor prompts
// are required before a batch may run; the response and style prompts
// are optional because the composer carries a static fallback.
const (
	PromptClassifier      = "classifier"
	PromptExtractor       = "extractor"
	PromptResponseMatched = "response_matched"
	PromptResponseNoMatch = "response_no_match"
	PromptStyle           = "style"
)

// Prompt is a named, versioned text blob handed to the oracle. The
// highest active version wins.
type Prompt struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;index"`
	Version   int            `json:"version" gorm:"default:1"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Prompt
func (Prompt) TableName() string {
	return "prompts"
}
