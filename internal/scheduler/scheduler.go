package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"shift-triage-go/internal/config"
	"shift-triage-go/internal/mailbox"
	"shift-triage-go/internal/pipeline"
	"shift-triage-go/internal/repository"
)

// Scheduler drives the triage pipeline: a periodic sync-and-run cycle,
// plus a retry sweep that re-queues eligible failed log entries. Retry
// policy lives here, outside the pipeline, which only ever processes
// once.
type Scheduler struct {
	cron        *cron.Cron
	entryID     cron.EntryID
	cfg         *config.SchedulerConfig
	pipelineCfg *config.PipelineConfig
	source      mailbox.MessageSource
	repo        *repository.Repository
	pipeline    *pipeline.Pipeline
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	isRunning   bool
	mu          sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, pipelineCfg *config.PipelineConfig, source mailbox.MessageSource, repo *repository.Repository, p *pipeline.Pipeline) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		cfg:         cfg,
		pipelineCfg: pipelineCfg,
		source:      source,
		repo:        repo,
		pipeline:    p,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	// Stop cancels the context; a restart needs a fresh one.
	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.cfg.IntervalMinutes)
	entryID, err := s.cron.AddFunc(schedule, s.runCycle)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = entryID

	if s.cfg.RetrySweepMinutes > 0 {
		sweepSchedule := fmt.Sprintf("0 */%d * * * *", s.cfg.RetrySweepMinutes)
		if _, err := s.cron.AddFunc(sweepSchedule, s.retrySweep); err != nil {
			return fmt.Errorf("failed to add retry sweep job: %w", err)
		}
	}

	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.cfg.IntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()
	ctx := s.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runCycle syncs new messages from the provider and runs one batch.
func (s *Scheduler) runCycle() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping cycle")
		return
	}
	s.mu.RUnlock()

	if _, err := s.syncAndRun(s.ctx); err != nil {
		logrus.Errorf("Triage cycle failed: %v", err)
	}
}

// syncAndRun fetches new inbound mail, persists it and runs the
// pipeline once.
func (s *Scheduler) syncAndRun(ctx context.Context) (pipeline.Summary, error) {
	startTime := time.Now()

	emails, err := s.source.FetchNew(ctx)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("failed to fetch emails: %w", err)
	}
	if err := s.repo.SaveInbound(emails); err != nil {
		return pipeline.Summary{}, err
	}
	logrus.Infof("Synced %d new emails", len(emails))

	summary, err := s.pipeline.Run(ctx)
	if err != nil {
		return summary, err
	}

	logrus.Infof("Triage cycle completed in %v", time.Since(startTime))
	return summary, nil
}

// retrySweep re-queues failed log entries that are under the attempt
// limit and past the backoff delay, then runs a batch to pick them up.
func (s *Scheduler) retrySweep() {
	s.wg.Add(1)
	defer s.wg.Done()

	delay := time.Duration(s.pipelineCfg.RetryDelayMinutes) * time.Minute
	eligible, err := s.repo.RetryEligible(s.pipelineCfg.MaxRetryAttempts, delay)
	if err != nil {
		logrus.Errorf("Retry sweep failed: %v", err)
		return
	}
	if len(eligible) == 0 {
		return
	}

	logrus.Infof("Retry sweep re-queueing %d failed entries", len(eligible))
	for _, entry := range eligible {
		if err := s.repo.Requeue(entry.ID); err != nil {
			logrus.Errorf("Failed to requeue log %d: %v", entry.ID, err)
		}
	}

	if _, err := s.pipeline.Run(s.ctx); err != nil {
		logrus.Errorf("Retry batch failed: %v", err)
	}
}

// RunOnce syncs and runs the pipeline once (for manual triggering).
func (s *Scheduler) RunOnce(ctx context.Context) (pipeline.Summary, error) {
	logrus.Info("Running triage cycle once")
	return s.syncAndRun(ctx)
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// Wait waits for in-flight jobs to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
