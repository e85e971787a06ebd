package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shift-triage-go/internal/config"
	"shift-triage-go/internal/metrics"
	"shift-triage-go/internal/model"
)

// Prometheus collectors register globally, so all tests share one set.
var testMetrics = metrics.NewMetrics()

// fakeStore is an in-memory Store.
type fakeStore struct {
	inbound       []model.InboundEmail
	logs          []*model.EmailLog
	approved      map[string]bool // "tenant|email"
	slots         []model.NurseAvailability
	assignments   []model.ShiftAssignment
	assignmentErr error
	prompts       map[string]string
	nextLogID     uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		approved: make(map[string]bool),
		prompts: map[string]string{
			model.PromptClassifier:      "CLASSIFY",
			model.PromptExtractor:       "EXTRACT",
			model.PromptResponseMatched: "MATCHED",
			model.PromptResponseNoMatch: "NOMATCH",
			model.PromptStyle:           "STYLE",
		},
	}
}

func (s *fakeStore) approve(tenant, email string) {
	s.approved[tenant+"|"+strings.ToLower(email)] = true
}

func (s *fakeStore) RecentInbound(tenantID string, limit int) ([]model.InboundEmail, error) {
	var out []model.InboundEmail
	for _, e := range s.inbound {
		if e.TenantID == tenantID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) LogFor(senderEmail, subject string) (*model.EmailLog, error) {
	for _, l := range s.logs {
		if l.SenderEmail == senderEmail && l.Subject == subject {
			return l, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) IsSenderApproved(tenantID, email string) (bool, error) {
	key := tenantID + "|" + strings.ToLower(email)
	global := "|" + strings.ToLower(email)
	return s.approved[key] || s.approved[global], nil
}

func (s *fakeStore) AvailabilityForDate(tenantID, date string) ([]model.NurseAvailability, error) {
	var out []model.NurseAvailability
	for _, slot := range s.slots {
		if slot.TenantID == tenantID && slot.Date == date && !slot.IsAssigned {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *fakeStore) ClaimSlot(nurseID uint, date, unit string) (bool, error) {
	for i := range s.slots {
		slot := &s.slots[i]
		if slot.NurseID == nurseID && slot.Date == date && slot.Unit == unit && !slot.IsAssigned {
			slot.IsAssigned = true
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateAssignment(a *model.ShiftAssignment) error {
	if s.assignmentErr != nil {
		return s.assignmentErr
	}
	s.assignments = append(s.assignments, *a)
	return nil
}

func (s *fakeStore) CreateLog(l *model.EmailLog) error {
	s.nextLogID++
	l.ID = s.nextLogID
	s.logs = append(s.logs, l)
	return nil
}

func (s *fakeStore) UpdateLog(l *model.EmailLog) error {
	for i, existing := range s.logs {
		if existing.ID == l.ID {
			s.logs[i] = l
			return nil
		}
	}
	return fmt.Errorf("log %d not found", l.ID)
}

func (s *fakeStore) GetPrompt(name string) (*model.Prompt, error) {
	content, ok := s.prompts[name]
	if !ok {
		return nil, nil
	}
	return &model.Prompt{Name: name, Content: content, Active: true}, nil
}

// fakeOracle dispatches on the system prompt content seeded by
// fakeStore (CLASSIFY / EXTRACT / MATCHED / NOMATCH).
type fakeOracle struct {
	label            string
	labelErr         error
	extractText      string
	extractErr       error
	prose            string
	proseErr         error
	lastSystemPrefix string
}

func (o *fakeOracle) Complete(ctx context.Context, system, user string) (string, error) {
	fields := strings.Fields(system)
	prefix := ""
	if len(fields) > 0 {
		prefix = fields[0]
	}
	switch prefix {
	case "CLASSIFY":
		return o.label, o.labelErr
	case "EXTRACT":
		return o.extractText, o.extractErr
	default:
		o.lastSystemPrefix = prefix
		return o.prose, o.proseErr
	}
}

// fakeSender records sent replies.
type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendReply(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func defaultPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ProcessingEnabled:   true,
		AutoResponseEnabled: true,
		InstantMode:         true,
		SendOnNoMatch:       true,
		MaxRetryAttempts:    3,
		RetryDelayMinutes:   30,
		BatchSize:           50,
	}
}

const testTenant = "trust-1"

func wardEmail() model.InboundEmail {
	return model.InboundEmail{
		TenantID:  testTenant,
		MessageID: "msg-1",
		FromEmail: "ward.clerk@hospital.test",
		FromName:  "Ward Clerk",
		Subject:   "Need RN Saturday",
		Body:      "We need a Band 5 RN on Ward A, 15 Jan, 19:00 to 07:30.",
	}
}

const wardShiftJSON = `[{"date":"2025-01-15","start_time":"19:00","end_time":"07:30","unit":"Ward A","grade":"Band 5 RN"}]`

func wardSlot() model.NurseAvailability {
	return model.NurseAvailability{
		TenantID: testTenant, NurseID: 7, NurseName: "Jo Bloggs",
		Date: "2025-01-15", StartTime: "18:00", EndTime: "08:00",
		Unit: "ward a", Grade: "Band 5",
	}
}

func TestRunBlocksUnapprovedSender(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.slots = []model.NurseAvailability{wardSlot()}
	sender := &fakeSender{}

	p := New(store, &fakeOracle{}, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Matched)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, model.StatusBlocked, store.logs[0].Status)
	assert.Equal(t, "sender not approved", store.logs[0].ErrorMessage)
	assert.Empty(t, sender.sent)
	assert.False(t, store.slots[0].IsAssigned)
}

func TestRunBlocksNonShiftEmail(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")

	p := New(store, &fakeOracle{label: "other"}, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, model.StatusBlocked, store.logs[0].Status)
	assert.Equal(t, model.ClassificationOther, store.logs[0].Classification)
	assert.Equal(t, "not a shift request", store.logs[0].ErrorMessage)
}

func TestRunMatchesAndSends(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Confirmed.</p>\n[SHIFTS_TABLE]"}

	p := New(store, oracle, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 0, summary.Errors)

	assert.Len(t, store.logs, 1)
	log := store.logs[0]
	assert.Equal(t, model.StatusSent, log.Status)
	if assert.NotNil(t, log.MatchedNurseID) {
		assert.Equal(t, uint(7), *log.MatchedNurseID)
	}
	assert.Equal(t, "2025-01-15", log.ShiftDate)
	assert.NotEmpty(t, log.ResponseBody)

	assert.Equal(t, []string{"ward.clerk@hospital.test"}, sender.sent)
	assert.True(t, store.slots[0].IsAssigned)
	if assert.Len(t, store.assignments, 1) {
		assert.Equal(t, uint(7), store.assignments[0].NurseID)
		assert.Equal(t, log.ID, store.assignments[0].EmailLogID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	first, err := p.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := p.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Len(t, store.logs, 1)
}

func TestRunTenantIsolation(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	// Approved for a different tenant only.
	store.approve("trust-2", "ward.clerk@hospital.test")

	p := New(store, &fakeOracle{}, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	_, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, model.StatusBlocked, store.logs[0].Status)
}

func TestRunGlobalApprovalFallback(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve("", "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)
}

func TestRunExtractionFailure(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: "sorry, nothing structured here"}

	p := New(store, oracle, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, model.StatusFailed, store.logs[0].Status)
	assert.Equal(t, "could not extract shift details", store.logs[0].ErrorMessage)
	assert.Equal(t, model.ClassificationShiftRequest, store.logs[0].Classification)
}

func TestRunComposerFallbackOnOracleFailure(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, proseErr: errors.New("oracle down")}

	p := New(store, oracle, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, model.StatusSent, store.logs[0].Status)
	assert.NotEmpty(t, store.logs[0].ResponseBody)
	assert.Len(t, sender.sent, 1)
}

func TestRunNoMatchSendingDisabled(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	cfg := defaultPipelineConfig()
	cfg.SendOnNoMatch = false
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON}

	p := New(store, oracle, sender, cfg, testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Matched)
	assert.Equal(t, model.StatusFailed, store.logs[0].Status)
	assert.Equal(t, "no matching nurses available", store.logs[0].ErrorMessage)
	assert.Empty(t, sender.sent)
}

func TestRunAutoResponseDisabled(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	cfg := defaultPipelineConfig()
	cfg.AutoResponseEnabled = false
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, sender, cfg, testTenant, testMetrics)
	_, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, store.logs[0].Status)
	assert.NotEmpty(t, store.logs[0].ResponseBody)
	assert.Empty(t, sender.sent)
	// No availability mutation before an actual send.
	assert.False(t, store.slots[0].IsAssigned)
	assert.Empty(t, store.assignments)
}

func TestRunSendFailure(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	sender := &fakeSender{err: errors.New("smtp unavailable")}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.Matched)
	assert.Equal(t, model.StatusFailed, store.logs[0].Status)
	assert.Contains(t, store.logs[0].ErrorMessage, "smtp unavailable")
	assert.False(t, store.slots[0].IsAssigned)
	assert.Empty(t, store.assignments)
}

func TestRunClassifierOracleFailure(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	oracle := &fakeOracle{labelErr: errors.New("rate limited")}

	p := New(store, oracle, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, model.StatusFailed, store.logs[0].Status)
	assert.Contains(t, store.logs[0].ErrorMessage, "rate limited")
}

func TestRunBatchExclusivityAcrossEmails(t *testing.T) {
	store := newFakeStore()
	second := wardEmail()
	second.MessageID = "msg-2"
	second.FromEmail = "matron@hospital.test"
	second.Subject = "Cover needed Ward A"
	store.inbound = []model.InboundEmail{wardEmail(), second}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.approve(testTenant, "matron@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Matched)
	// Both emails got a response, but only one assignment exists.
	assert.Len(t, sender.sent, 2)
	assert.Len(t, store.assignments, 1)

	matchedLogs := 0
	for _, l := range store.logs {
		assert.Equal(t, model.StatusSent, l.Status)
		if l.MatchedNurseID != nil {
			matchedLogs++
		}
	}
	assert.Equal(t, 1, matchedLogs)
}

func TestRunRetryUpdatesExistingLog(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	// A previous failed attempt, re-queued by the sweep.
	store.logs = append(store.logs, &model.EmailLog{
		ID: 41, SenderEmail: "ward.clerk@hospital.test", Subject: "Need RN Saturday",
		Status: model.StatusPending, ErrorMessage: "could not extract shift details", RetryCount: 0,
	})
	store.nextLogID = 41
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Len(t, store.logs, 1)
	assert.Equal(t, model.StatusSent, store.logs[0].Status)
	assert.Equal(t, 1, store.logs[0].RetryCount)
	assert.Empty(t, store.logs[0].ErrorMessage)
}

func TestRunRetryClearsStaleMatchFields(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	// An earlier attempt got as far as a match before the send failed;
	// the sweep reset it to pending.
	staleNurse := uint(7)
	store.logs = append(store.logs, &model.EmailLog{
		ID: 52, SenderEmail: "ward.clerk@hospital.test", Subject: "Need RN Saturday",
		Status: model.StatusPending, MatchedNurseID: &staleNurse,
		ResponseBody: "<html>old reply</html>", ResponseTimeMs: 120,
		ShiftDate: "2025-01-15", ShiftStart: "19:00", ShiftEnd: "07:30",
		ShiftUnit: "Ward A", ShiftGrade: "Band 5 RN",
	})
	store.nextLogID = 52
	// This attempt fails earlier, at extraction.
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: "nothing structured"}

	p := New(store, oracle, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	_, err := p.Run(context.Background())

	assert.NoError(t, err)
	log := store.logs[0]
	assert.Equal(t, model.StatusFailed, log.Status)
	assert.Equal(t, "could not extract shift details", log.ErrorMessage)
	assert.Nil(t, log.MatchedNurseID)
	assert.Empty(t, log.ResponseBody)
	assert.Zero(t, log.ResponseTimeMs)
	assert.Empty(t, log.ShiftDate)
	assert.Empty(t, log.ShiftUnit)
}

func TestRunRecordsAssignmentInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	store.assignmentErr = errors.New("insert failed")
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)
	assert.Len(t, sender.sent, 1)
	assert.True(t, store.slots[0].IsAssigned)
	assert.Empty(t, store.assignments)
	// The reply went out, but the claimed slot has no assignment row;
	// the gap must be visible on the log entry.
	log := store.logs[0]
	assert.Equal(t, model.StatusSent, log.Status)
	assert.Contains(t, log.ErrorMessage, "assignment record missing for nurse 7")
}

func TestRunDelayedSendWaits(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	cfg := defaultPipelineConfig()
	cfg.InstantMode = false
	cfg.ResponseDelaySeconds = 1
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	p := New(store, oracle, sender, cfg, testTenant, testMetrics)
	start := time.Now()
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)
	assert.Len(t, sender.sent, 1)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
	assert.Equal(t, model.StatusSent, store.logs[0].Status)
}

func TestRunDelayedSendCancelled(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	cfg := defaultPipelineConfig()
	cfg.InstantMode = false
	cfg.ResponseDelaySeconds = 60
	sender := &fakeSender{}
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: wardShiftJSON, prose: "<p>Hi</p>"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(store, oracle, sender, cfg, testTenant, testMetrics)
	summary, err := p.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.Matched)
	assert.Empty(t, sender.sent)
	assert.Equal(t, model.StatusFailed, store.logs[0].Status)
	assert.Contains(t, store.logs[0].ErrorMessage, "context canceled")
	assert.False(t, store.slots[0].IsAssigned)
}

func TestRunProcessingDisabled(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	cfg := defaultPipelineConfig()
	cfg.ProcessingEnabled = false

	p := New(store, &fakeOracle{}, &fakeSender{}, cfg, testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, store.logs)
}

func TestRunMissingRequiredPrompt(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	delete(store.prompts, model.PromptClassifier)

	p := New(store, &fakeOracle{}, &fakeSender{}, defaultPipelineConfig(), testTenant, testMetrics)
	_, err := p.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "classifier")
	assert.Empty(t, store.logs)
}

func TestRunMixedOutcomesSingleEmail(t *testing.T) {
	store := newFakeStore()
	store.inbound = []model.InboundEmail{wardEmail()}
	store.approve(testTenant, "ward.clerk@hospital.test")
	store.slots = []model.NurseAvailability{wardSlot()}
	sender := &fakeSender{}
	// Two shifts requested, only one can be matched.
	twoShifts := `[
		{"date":"2025-01-15","start_time":"19:00","end_time":"07:30","unit":"Ward A","grade":"Band 5 RN"},
		{"date":"2025-01-16","start_time":"19:00","end_time":"07:30","unit":"Ward A","grade":"Band 5 RN"}
	]`
	oracle := &fakeOracle{label: "nhs_shift_asking", extractText: twoShifts, prose: "<p>Hi</p>\n[SHIFTS_TABLE]"}

	p := New(store, oracle, sender, defaultPipelineConfig(), testTenant, testMetrics)
	summary, err := p.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Matched)
	log := store.logs[0]
	assert.Equal(t, model.StatusSent, log.Status)
	assert.Contains(t, log.ResponseBody, "Jo Bloggs")
	assert.Contains(t, log.ResponseBody, "No match")
	assert.Len(t, store.assignments, 1)
}
