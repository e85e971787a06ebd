package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/config"
	"shift-triage-go/internal/mailbox"
	"shift-triage-go/internal/metrics"
	"shift-triage-go/internal/model"
	"shift-triage-go/internal/oracle"
)

// Summary reports the outcome of one batch run.
type Summary struct {
	Processed int
	Matched   int
	Errors    int
	Message   string
}

// Pipeline runs the email-to-assignment triage: intake gate,
// classification, extraction, matching, composition, delivery and
// outcome recording. Emails are processed one at a time; a bad email
// never aborts the batch.
type Pipeline struct {
	store    Store
	oracle   oracle.Client
	sender   mailbox.ReplySender
	cfg      config.PipelineConfig
	tenantID string
	metrics  *metrics.Metrics
}

// New creates a pipeline
func New(store Store, client oracle.Client, sender mailbox.ReplySender, cfg config.PipelineConfig, tenantID string, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		store:    store,
		oracle:   client,
		sender:   sender,
		cfg:      cfg,
		tenantID: tenantID,
		metrics:  m,
	}
}

// Run executes one batch over the most recent inbound emails. Only
// pre-flight failures (processing disabled, required prompts missing,
// store unavailable) return an error; per-email failures become log
// entries and count toward Summary.Errors.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if !p.cfg.ProcessingEnabled {
		return Summary{Message: "processing is disabled"}, fmt.Errorf("processing is disabled")
	}

	classifierPrompt, err := p.requiredPrompt(model.PromptClassifier)
	if err != nil {
		return Summary{Message: err.Error()}, err
	}
	extractorPrompt, err := p.requiredPrompt(model.PromptExtractor)
	if err != nil {
		return Summary{Message: err.Error()}, err
	}

	classifier := newClassifier(p.oracle, classifierPrompt)
	extractor := newExtractor(p.oracle, extractorPrompt)
	composer := newComposer(
		p.oracle,
		p.optionalPrompt(model.PromptResponseMatched),
		p.optionalPrompt(model.PromptResponseNoMatch),
		p.optionalPrompt(model.PromptStyle),
		p.cfg.SendOnNoMatch,
	)
	matcher := newMatcher(p.store, p.tenantID)

	candidates, err := p.store.RecentInbound(p.tenantID, p.cfg.BatchSize)
	if err != nil {
		return Summary{Message: "failed to load inbound emails"}, err
	}

	p.metrics.BatchCount.Inc()
	logrus.Infof("Starting triage batch over %d candidate emails", len(candidates))

	var summary Summary
	for _, email := range candidates {
		prior, err := p.store.LogFor(email.FromEmail, email.Subject)
		if err != nil {
			logrus.Errorf("Failed to check log for email from %s: %v", email.FromEmail, err)
			summary.Errors++
			continue
		}
		if prior != nil && prior.Status != model.StatusPending {
			logrus.Debugf("Email from %s (%q) already processed, skipping", email.FromEmail, email.Subject)
			continue
		}

		entry := p.newLogEntry(email, prior)
		matched, err := p.processEmail(ctx, email, entry, classifier, extractor, matcher, composer)
		summary.Processed++
		p.metrics.ProcessedCount.Inc()

		if err != nil {
			logrus.Errorf("Failed to process email from %s: %v", email.FromEmail, err)
			entry.Status = model.StatusFailed
			entry.ErrorMessage = err.Error()
			if recordErr := p.record(entry); recordErr != nil {
				logrus.Errorf("Failed to record outcome for email from %s: %v", email.FromEmail, recordErr)
			}
			summary.Errors++
			continue
		}
		if matched {
			summary.Matched++
			p.metrics.MatchedCount.Inc()
		}
	}

	summary.Message = fmt.Sprintf("processed %d emails: %d matched, %d errors",
		summary.Processed, summary.Matched, summary.Errors)
	logrus.Infof("Triage batch completed: %s", summary.Message)
	return summary, nil
}

// processEmail runs one email through the full pipeline. Terminal
// outcomes are persisted here; a returned error means the caller
// records the entry as failed with the error text.
func (p *Pipeline) processEmail(ctx context.Context, email model.InboundEmail, entry *model.EmailLog,
	classifier *Classifier, extractor *Extractor, matcher *Matcher, composer *Composer) (bool, error) {

	approved, err := p.store.IsSenderApproved(email.TenantID, email.FromEmail)
	if err != nil {
		return false, fmt.Errorf("approved sender lookup failed: %w", err)
	}
	if !approved {
		entry.Status = model.StatusBlocked
		entry.ErrorMessage = "sender not approved"
		p.metrics.BlockedCount.Inc()
		return false, p.record(entry)
	}

	label, err := classifier.Classify(ctx, email.Subject, email.Body)
	if err != nil {
		return false, err
	}
	entry.Classification = label
	if label != model.ClassificationShiftRequest {
		entry.Status = model.StatusBlocked
		entry.ErrorMessage = "not a shift request"
		p.metrics.BlockedCount.Inc()
		return false, p.record(entry)
	}

	shifts, err := extractor.Extract(ctx, email.Body)
	if err != nil {
		return false, err
	}
	if len(shifts) == 0 {
		entry.Status = model.StatusFailed
		entry.ErrorMessage = "could not extract shift details"
		return false, p.record(entry)
	}

	results := make([]model.MatchResult, 0, len(shifts))
	matchedCount := 0
	for _, shift := range shifts {
		nurse, err := matcher.Match(shift)
		if err != nil {
			return false, fmt.Errorf("availability lookup failed: %w", err)
		}
		if nurse != nil {
			matchedCount++
		}
		results = append(results, model.MatchResult{Shift: shift, Nurse: nurse})
	}
	p.recordShiftFields(entry, results)

	body, ok := composer.Compose(ctx, results)
	if !ok {
		entry.Status = model.StatusFailed
		entry.ErrorMessage = "no matching nurses available"
		return false, p.record(entry)
	}
	entry.ResponseBody = body

	if !p.cfg.AutoResponseEnabled {
		entry.Status = model.StatusPending
		logrus.Infof("Auto-response disabled, leaving email from %s pending", email.FromEmail)
		return false, p.record(entry)
	}

	if !p.cfg.InstantMode && p.cfg.ResponseDelaySeconds > 0 {
		select {
		case <-time.After(time.Duration(p.cfg.ResponseDelaySeconds) * time.Second):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	// response_time_ms covers the send call only; it is the
	// operator-facing speed-of-response metric.
	start := time.Now()
	sendErr := p.sender.SendReply(ctx, email.FromEmail, email.Subject, body)
	entry.ResponseTimeMs = time.Since(start).Milliseconds()
	p.metrics.SendDuration.Observe(time.Since(start).Seconds())
	if sendErr != nil {
		p.metrics.SendFailures.Inc()
		return false, fmt.Errorf("failed to send response: %w", sendErr)
	}
	p.metrics.SendSuccesses.Inc()

	entry.Status = model.StatusSent
	if err := p.record(entry); err != nil {
		return false, err
	}

	p.commitAssignments(email, entry, results)
	return matchedCount > 0, nil
}

// commitAssignments flips availability and inserts assignment rows for
// every matched shift. The response is already on the wire at this
// point, so store failures are logged rather than failing the email.
func (p *Pipeline) commitAssignments(email model.InboundEmail, entry *model.EmailLog, results []model.MatchResult) {
	for _, r := range results {
		if r.Nurse == nil {
			continue
		}

		claimed, err := p.store.ClaimSlot(r.Nurse.NurseID, r.Nurse.Date, r.Nurse.Unit)
		if err != nil {
			logrus.Errorf("Failed to claim slot for nurse %d on %s: %v", r.Nurse.NurseID, r.Nurse.Date, err)
			continue
		}
		if !claimed {
			// A concurrent batch got there first; the reply already
			// promised this nurse, so surface it loudly.
			logrus.Warnf("Slot for nurse %d on %s (%s) was claimed by another run", r.Nurse.NurseID, r.Nurse.Date, r.Nurse.Unit)
			continue
		}

		assignment := &model.ShiftAssignment{
			TenantID:   email.TenantID,
			NurseID:    r.Nurse.NurseID,
			Date:       r.Shift.Date,
			StartTime:  r.Shift.StartTime,
			EndTime:    r.Shift.EndTime,
			Unit:       r.Nurse.Unit,
			Grade:      r.Shift.Grade,
			EmailLogID: entry.ID,
		}
		if err := p.store.CreateAssignment(assignment); err != nil {
			// The slot is already flagged assigned; write the gap onto
			// the log entry so operators can reconcile.
			logrus.Errorf("Failed to create assignment for nurse %d: %v", r.Nurse.NurseID, err)
			entry.ErrorMessage = fmt.Sprintf("assignment record missing for nurse %d on %s (%s)",
				r.Nurse.NurseID, r.Shift.Date, r.Nurse.Unit)
			if recordErr := p.record(entry); recordErr != nil {
				logrus.Errorf("Failed to record assignment gap for log %d: %v", entry.ID, recordErr)
			}
		}
	}
}

// recordShiftFields copies the primary shift (first matched, else
// first extracted) and its nurse into the log entry.
func (p *Pipeline) recordShiftFields(entry *model.EmailLog, results []model.MatchResult) {
	if len(results) == 0 {
		return
	}
	primary := results[0]
	for _, r := range results {
		if r.Nurse != nil {
			primary = r
			break
		}
	}
	entry.ShiftDate = primary.Shift.Date
	entry.ShiftStart = primary.Shift.StartTime
	entry.ShiftEnd = primary.Shift.EndTime
	entry.ShiftUnit = primary.Shift.Unit
	entry.ShiftGrade = primary.Shift.Grade
	if primary.Nurse != nil {
		nurseID := primary.Nurse.NurseID
		entry.MatchedNurseID = &nurseID
	}
}

// newLogEntry builds the log entry for this pass: a fresh row for
// first-time emails, the existing row with a bumped retry count for
// re-queued ones. Outcome fields from the earlier attempt are cleared
// so a retry that fails at a different stage cannot keep a stale
// matched nurse or response.
func (p *Pipeline) newLogEntry(email model.InboundEmail, prior *model.EmailLog) *model.EmailLog {
	if prior != nil {
		prior.RetryCount++
		prior.ErrorMessage = ""
		prior.MatchedNurseID = nil
		prior.ResponseBody = ""
		prior.ResponseTimeMs = 0
		prior.ShiftDate = ""
		prior.ShiftStart = ""
		prior.ShiftEnd = ""
		prior.ShiftUnit = ""
		prior.ShiftGrade = ""
		prior.SenderName = email.FromName
		prior.Body = email.Body
		return prior
	}
	return &model.EmailLog{
		TenantID:    email.TenantID,
		SenderEmail: email.FromEmail,
		SenderName:  email.FromName,
		Subject:     email.Subject,
		Body:        email.Body,
	}
}

// record persists the entry, creating or updating depending on whether
// it already has an id.
func (p *Pipeline) record(entry *model.EmailLog) error {
	if entry.ID != 0 {
		return p.store.UpdateLog(entry)
	}
	return p.store.CreateLog(entry)
}

func (p *Pipeline) requiredPrompt(name string) (string, error) {
	prompt, err := p.store.GetPrompt(name)
	if err != nil {
		return "", err
	}
	if prompt == nil {
		return "", fmt.Errorf("required prompt %q is missing", name)
	}
	return prompt.Content, nil
}

func (p *Pipeline) optionalPrompt(name string) string {
	prompt, err := p.store.GetPrompt(name)
	if err != nil || prompt == nil {
		if err != nil {
			logrus.Warnf("Failed to load prompt %q: %v", name, err)
		}
		return ""
	}
	return prompt.Content
}
