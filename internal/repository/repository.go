package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shift-triage-go/internal/model"
)

// Repository wraps all store access used by the pipeline and the ops
// API. It satisfies the pipeline's Store interface.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveInbound persists synced messages, ignoring ones already stored
// under the same provider message id.
func (r *Repository) SaveInbound(emails []model.InboundEmail) error {
	if len(emails) == 0 {
		return nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoNothing: true,
	}).Create(&emails)
	if result.Error != nil {
		return fmt.Errorf("failed to save inbound emails: %w", result.Error)
	}
	return nil
}

// RecentInbound returns the most recently received inbound emails for
// a tenant, newest first.
func (r *Repository) RecentInbound(tenantID string, limit int) ([]model.InboundEmail, error) {
	var emails []model.InboundEmail
	result := r.db.Where("tenant_id = ?", tenantID).
		Order("received_at desc").
		Limit(limit).
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get recent inbound emails: %w", result.Error)
	}
	return emails, nil
}

// LogFor returns the existing log entry for a (sender, subject) pair,
// or nil when the email has never been processed.
func (r *Repository) LogFor(senderEmail, subject string) (*model.EmailLog, error) {
	var log model.EmailLog
	result := r.db.Where("sender_email = ? AND subject = ?", senderEmail, subject).First(&log)
	if result.Error == nil {
		return &log, nil
	}
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, fmt.Errorf("database error checking email log: %w", result.Error)
}

// IsSenderApproved reports whether the address is an active approved
// sender for the tenant. Tenant-scoped entries take the tenant id
// literally; entries with an empty tenant id apply globally.
func (r *Repository) IsSenderApproved(tenantID, email string) (bool, error) {
	var count int64
	query := r.db.Model(&model.ApprovedSender{}).
		Where("LOWER(email) = LOWER(?) AND active = ?", email, true)
	if tenantID != "" {
		query = query.Where("tenant_id = ? OR tenant_id = ''", tenantID)
	} else {
		query = query.Where("tenant_id = ''")
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check approved sender: %w", err)
	}
	return count > 0, nil
}

// AvailabilityForDate returns unassigned slots for the given date.
func (r *Repository) AvailabilityForDate(tenantID, date string) ([]model.NurseAvailability, error) {
	var slots []model.NurseAvailability
	result := r.db.Where("tenant_id = ? AND date = ? AND is_assigned = ?", tenantID, date, false).
		Find(&slots)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get availability: %w", result.Error)
	}
	return slots, nil
}

// ClaimSlot flips is_assigned for the (nurse, date, unit) slot. The
// is_assigned = false guard means a slot claimed by a concurrent batch
// yields zero affected rows instead of a silent double-booking.
func (r *Repository) ClaimSlot(nurseID uint, date, unit string) (bool, error) {
	result := r.db.Model(&model.NurseAvailability{}).
		Where("nurse_id = ? AND date = ? AND unit = ? AND is_assigned = ?", nurseID, date, unit, false).
		Update("is_assigned", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim availability slot: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreateAssignment persists a confirmed shift assignment.
func (r *Repository) CreateAssignment(assignment *model.ShiftAssignment) error {
	if err := r.db.Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create shift assignment: %w", err)
	}
	return nil
}

// CreateLog appends a new email log entry.
func (r *Repository) CreateLog(log *model.EmailLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	return nil
}

// UpdateLog saves an existing email log entry (retry path).
func (r *Repository) UpdateLog(log *model.EmailLog) error {
	if err := r.db.Save(log).Error; err != nil {
		return fmt.Errorf("failed to update email log: %w", err)
	}
	return nil
}

// GetPrompt returns the highest active version of a named prompt, or
// nil when no active version exists.
func (r *Repository) GetPrompt(name string) (*model.Prompt, error) {
	var prompt model.Prompt
	result := r.db.Where("name = ? AND active = ?", name, true).
		Order("version desc").
		First(&prompt)
	if result.Error == nil {
		return &prompt, nil
	}
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get prompt %q: %w", name, result.Error)
}

// RetryEligible returns failed log entries that are old enough and
// under the attempt limit. Blocked entries are policy rejections and
// are never retried.
func (r *Repository) RetryEligible(maxAttempts int, delay time.Duration) ([]model.EmailLog, error) {
	var logs []model.EmailLog
	cutoff := time.Now().Add(-delay)
	result := r.db.Where("status = ? AND retry_count < ? AND updated_at < ?",
		model.StatusFailed, maxAttempts, cutoff).
		Find(&logs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get retry-eligible logs: %w", result.Error)
	}
	return logs, nil
}

// Requeue resets a failed log entry to pending so the next batch picks
// it up again.
func (r *Repository) Requeue(logID uint) error {
	result := r.db.Model(&model.EmailLog{}).
		Where("id = ? AND status = ?", logID, model.StatusFailed).
		Update("status", model.StatusPending)
	if result.Error != nil {
		return fmt.Errorf("failed to requeue log %d: %w", logID, result.Error)
	}
	return nil
}
