// Package scheduler runs the periodic warehouse pull that keeps the local
// mirror of warehouse orders fresh between webhook deliveries.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// maxRetryDelay caps the exponential backoff between attempts
const maxRetryDelay = 30 * time.Minute

// SyncJobStatus represents the status of a scheduled sync job
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "PENDING"
	SyncJobStatusRunning SyncJobStatus = "RUNNING"
	SyncJobStatusSuccess SyncJobStatus = "SUCCESS"
	SyncJobStatusPartial SyncJobStatus = "PARTIAL"
	SyncJobStatusFailed  SyncJobStatus = "FAILED"
)

// SyncJob is one scheduled pull, including its retries
type SyncJob struct {
	ID          uuid.UUID
	Since       *time.Time
	Status      SyncJobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int

	Synced int
	Failed int
}

// NewSyncJob creates a pending job pulling everything modified since the given time
func NewSyncJob(since *time.Time, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Since:      since,
		Status:     SyncJobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start(now time.Time) {
	j.Status = SyncJobStatusRunning
	if j.StartedAt == nil {
		j.StartedAt = &now
	}
	j.Error = ""
}

// Complete records the counters of a finished pass
func (j *SyncJob) Complete(result *fulfillment.SyncResult, now time.Time) {
	j.Synced = result.Synced
	j.Failed = result.Errors
	j.CompletedAt = &now

	switch result.Status {
	case fulfillment.SyncStatusSuccess:
		j.Status = SyncJobStatusSuccess
	case fulfillment.SyncStatusPartial:
		j.Status = SyncJobStatusPartial
	default:
		j.Status = SyncJobStatusFailed
		j.Error = ErrSyncFailed.Error()
	}
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string, now time.Time) {
	j.Status = SyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == SyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// NextRetryDelay counts the retry and returns baseDelay * 2^(retries-1), capped
func (j *SyncJob) NextRetryDelay(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	j.Status = SyncJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	return delay
}

// Syncer pulls warehouse orders into the local mirror
type Syncer interface {
	Sync(ctx context.Context, since *time.Time) (*fulfillment.SyncResult, error)
}

// SyncSchedulerConfig holds configuration for the sync scheduler
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// Interval is the time between scheduled pulls
	Interval time.Duration
	// JobTimeout bounds a single attempt
	JobTimeout time.Duration
	// RetryAttempts is the number of retries for a failed pull
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// Lookback limits the first pull; zero pulls every order
	Lookback time.Duration
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:       true,
		Interval:      5 * time.Minute,
		JobTimeout:    2 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    10 * time.Second,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 || c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 || c.Lookback < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler periodically pulls modified warehouse orders. Each pass starts
// from the start time of the last fully successful pass, so windows overlap
// and the idempotent upsert absorbs the duplicates.
type SyncScheduler struct {
	config SyncSchedulerConfig
	syncer Syncer
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	cursor    *time.Time

	// Job history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []SyncJob
	maxHistory int
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(config SyncSchedulerConfig, syncer Syncer, logger *zap.Logger) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SyncScheduler{
		config:     config,
		syncer:     syncer,
		logger:     logger,
		now:        time.Now,
		maxHistory: 50,
	}
	if config.Lookback > 0 {
		since := s.now().Add(-config.Lookback)
		s.cursor = &since
	}
	return s, nil
}

// Start runs one pull immediately and then one per interval until Stop
func (s *SyncScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Warehouse sync scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Warehouse sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running pull to return
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Warehouse sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Warehouse sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes one pull with retries and returns the finished job
func (s *SyncScheduler) RunOnce(ctx context.Context) SyncJob {
	s.mu.Lock()
	job := NewSyncJob(s.cursor, s.config.RetryAttempts)
	s.mu.Unlock()

	log := s.logger.With(zap.String("job_id", job.ID.String()))
	for {
		s.attempt(ctx, job)
		if !job.ShouldRetry() || ctx.Err() != nil {
			break
		}

		delay := job.NextRetryDelay(s.config.RetryDelay)
		log.Info("Warehouse sync scheduled for retry",
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("delay", delay),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			job.Fail(ctx.Err().Error(), s.now())
			s.addToHistory(job)
			return *job
		case <-timer.C:
		}
	}

	switch job.Status {
	case SyncJobStatusFailed:
		log.Error("Scheduled warehouse sync failed",
			zap.Int("retries", job.RetryCount),
			zap.String("error", job.Error))
	case SyncJobStatusPartial:
		// the next pass repeats this window so the failed orders get another try
		log.Warn("Scheduled warehouse sync partially failed",
			zap.Int("synced", job.Synced),
			zap.Int("failed", job.Failed),
		)
	default:
		// nothing newer than this pass's start can have been missed
		s.mu.Lock()
		s.cursor = job.StartedAt
		s.mu.Unlock()
		log.Info("Scheduled warehouse sync completed",
			zap.Int("synced", job.Synced),
		)
	}

	s.addToHistory(job)
	return *job
}

func (s *SyncScheduler) attempt(ctx context.Context, job *SyncJob) {
	job.Start(s.now())

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	result, err := s.syncer.Sync(jobCtx, job.Since)
	if err != nil {
		job.Fail(err.Error(), s.now())
		return
	}
	job.Complete(result, s.now())
}

// Cursor returns the lower bound of the next pull, or nil for a full pull
func (s *SyncScheduler) Cursor() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor == nil {
		return nil
	}
	c := *s.cursor
	return &c
}

func (s *SyncScheduler) addToHistory(job *SyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]SyncJob{*job}, s.history...)
	if len(s.history) > s.maxHistory {
		s.history = s.history[:s.maxHistory]
	}
}

// History returns recent jobs, newest first
func (s *SyncScheduler) History(limit int) []SyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]SyncJob, limit)
	copy(result, s.history[:limit])
	return result
}
