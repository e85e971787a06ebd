package pipeline

import (
	"shift-triage-go/internal/model"
)

// Store is the narrow persistence surface the pipeline needs. It is
// implemented by repository.Repository; tests substitute an in-memory
// fake.
type Store interface {
	RecentInbound(tenantID string, limit int) ([]model.InboundEmail, error)
	LogFor(senderEmail, subject string) (*model.EmailLog, error)
	IsSenderApproved(tenantID, email string) (bool, error)
	AvailabilityForDate(tenantID, date string) ([]model.NurseAvailability, error)
	ClaimSlot(nurseID uint, date, unit string) (bool, error)
	CreateAssignment(assignment *model.ShiftAssignment) error
	CreateLog(log *model.EmailLog) error
	UpdateLog(log *model.EmailLog) error
	GetPrompt(name string) (*model.Prompt, error)
}
