package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/fulfillment"
)

// scriptedSyncer replays canned results and records the since of every call
type scriptedSyncer struct {
	mu      sync.Mutex
	results []*fulfillment.SyncResult
	errs    []error
	calls   []*time.Time
}

func (s *scriptedSyncer) Sync(_ context.Context, since *time.Time) (*fulfillment.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.calls)
	s.calls = append(s.calls, since)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.results) {
		return s.results[i], nil
	}
	return &fulfillment.SyncResult{Status: fulfillment.SyncStatusSuccess}, nil
}

func (s *scriptedSyncer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:       true,
		Interval:      time.Hour,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
}

func TestSyncJob_Complete(t *testing.T) {
	tests := []struct {
		name   string
		status fulfillment.SyncStatus
		want   SyncJobStatus
	}{
		{"success", fulfillment.SyncStatusSuccess, SyncJobStatusSuccess},
		{"partial", fulfillment.SyncStatusPartial, SyncJobStatusPartial},
		{"failed", fulfillment.SyncStatusFailed, SyncJobStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewSyncJob(nil, 3)
			job.Start(time.Now())
			job.Complete(&fulfillment.SyncResult{Status: tt.status, Synced: 7, Errors: 3}, time.Now())

			assert.Equal(t, tt.want, job.Status)
			assert.Equal(t, 7, job.Synced)
			assert.Equal(t, 3, job.Failed)
			assert.NotNil(t, job.CompletedAt)
		})
	}
}

func TestSyncJob_ShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		status     SyncJobStatus
		retryCount int
		expected   bool
	}{
		{"failed with retries available", SyncJobStatusFailed, 0, true},
		{"failed max retries reached", SyncJobStatusFailed, 3, false},
		{"success should not retry", SyncJobStatusSuccess, 0, false},
		{"partial should not retry", SyncJobStatusPartial, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewSyncJob(nil, 3)
			job.Status = tt.status
			job.RetryCount = tt.retryCount
			assert.Equal(t, tt.expected, job.ShouldRetry())
		})
	}
}

func TestSyncJob_NextRetryDelay(t *testing.T) {
	job := NewSyncJob(nil, 10)

	assert.Equal(t, time.Minute, job.NextRetryDelay(time.Minute))
	assert.Equal(t, 2*time.Minute, job.NextRetryDelay(time.Minute))
	assert.Equal(t, 4*time.Minute, job.NextRetryDelay(time.Minute))
	assert.Equal(t, 3, job.RetryCount)
	assert.Equal(t, SyncJobStatusPending, job.Status)

	for i := 0; i < 5; i++ {
		job.NextRetryDelay(time.Minute)
	}
	assert.Equal(t, maxRetryDelay, job.NextRetryDelay(time.Minute))
}

func TestSyncSchedulerConfig_Validate(t *testing.T) {
	valid := DefaultSyncSchedulerConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*SyncSchedulerConfig)
	}{
		{"zero interval", func(c *SyncSchedulerConfig) { c.Interval = 0 }},
		{"zero timeout", func(c *SyncSchedulerConfig) { c.JobTimeout = 0 }},
		{"negative retries", func(c *SyncSchedulerConfig) { c.RetryAttempts = -1 }},
		{"negative lookback", func(c *SyncSchedulerConfig) { c.Lookback = -time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSyncSchedulerConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("disabled config skips validation", func(t *testing.T) {
		cfg := SyncSchedulerConfig{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})
}

func TestSyncScheduler_RunOnce(t *testing.T) {
	t.Run("first pass is a full pull and later passes are incremental", func(t *testing.T) {
		syncer := &scriptedSyncer{}
		s, err := NewSyncScheduler(testConfig(), syncer, zap.NewNop())
		require.NoError(t, err)
		start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return start }

		job := s.RunOnce(context.Background())
		assert.Equal(t, SyncJobStatusSuccess, job.Status)
		assert.Nil(t, syncer.calls[0])

		s.RunOnce(context.Background())
		require.Len(t, syncer.calls, 2)
		require.NotNil(t, syncer.calls[1])
		assert.Equal(t, start, *syncer.calls[1])
	})

	t.Run("lookback bounds the first pull", func(t *testing.T) {
		cfg := testConfig()
		cfg.Lookback = 24 * time.Hour
		syncer := &scriptedSyncer{}
		s, err := NewSyncScheduler(cfg, syncer, zap.NewNop())
		require.NoError(t, err)

		s.RunOnce(context.Background())

		require.NotNil(t, syncer.calls[0])
		assert.WithinDuration(t, time.Now().Add(-24*time.Hour), *syncer.calls[0], time.Minute)
	})

	t.Run("retries until success", func(t *testing.T) {
		syncer := &scriptedSyncer{errs: []error{errors.New("connection refused"), nil}}
		s, err := NewSyncScheduler(testConfig(), syncer, zap.NewNop())
		require.NoError(t, err)

		job := s.RunOnce(context.Background())

		assert.Equal(t, SyncJobStatusSuccess, job.Status)
		assert.Equal(t, 1, job.RetryCount)
		assert.Equal(t, 2, syncer.callCount())
		assert.NotNil(t, s.Cursor())
	})

	t.Run("gives up after the retry budget and keeps the cursor", func(t *testing.T) {
		boom := errors.New("warehouse down")
		syncer := &scriptedSyncer{errs: []error{boom, boom, boom}}
		s, err := NewSyncScheduler(testConfig(), syncer, zap.NewNop())
		require.NoError(t, err)

		job := s.RunOnce(context.Background())

		assert.Equal(t, SyncJobStatusFailed, job.Status)
		assert.Equal(t, "warehouse down", job.Error)
		assert.Equal(t, 3, syncer.callCount())
		assert.Nil(t, s.Cursor())
	})

	t.Run("an all-failed pass is retried", func(t *testing.T) {
		syncer := &scriptedSyncer{results: []*fulfillment.SyncResult{
			{Status: fulfillment.SyncStatusFailed, Errors: 4},
			{Status: fulfillment.SyncStatusPartial, Synced: 3, Errors: 1},
		}}
		s, err := NewSyncScheduler(testConfig(), syncer, zap.NewNop())
		require.NoError(t, err)

		job := s.RunOnce(context.Background())

		assert.Equal(t, SyncJobStatusPartial, job.Status)
		assert.Equal(t, 3, job.Synced)
		assert.Nil(t, s.Cursor(), "a partial pass does not advance the cursor")
	})
}

func TestSyncScheduler_History(t *testing.T) {
	syncer := &scriptedSyncer{}
	s, err := NewSyncScheduler(testConfig(), syncer, zap.NewNop())
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, s.RunOnce(context.Background()).ID.String())
	}

	history := s.History(2)
	require.Len(t, history, 2)
	assert.Equal(t, ids[2], history[0].ID.String())
	assert.Equal(t, ids[1], history[1].ID.String())
	assert.Len(t, s.History(0), 3)
}

func TestSyncScheduler_StartStop(t *testing.T) {
	t.Run("runs immediately on start", func(t *testing.T) {
		syncer := &scriptedSyncer{}
		s, err := NewSyncScheduler(testConfig(), syncer, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Start(context.Background()))

		assert.Eventually(t, func() bool { return syncer.callCount() == 1 }, time.Second, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
		require.NoError(t, s.Stop(ctx))
	})

	t.Run("disabled scheduler never syncs", func(t *testing.T) {
		syncer := &scriptedSyncer{}
		s, err := NewSyncScheduler(SyncSchedulerConfig{Enabled: false}, syncer, nil)
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Stop(context.Background()))
		assert.Zero(t, syncer.callCount())
	})
}
