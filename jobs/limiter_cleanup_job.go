package jobs

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCleanupInterval = 10 * time.Minute
	DefaultLimiterMaxIdle  = time.Hour
)

// LimiterStore is satisfied by middleware.RateLimiter.
type LimiterStore interface {
	Cleanup(maxIdle time.Duration) int
}

// LimiterCleanupJob periodically evicts per-client rate limiters that have gone idle.
type LimiterCleanupJob struct {
	store    LimiterStore
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLimiterCleanupJob creates a new cleanup job
func NewLimiterCleanupJob(store LimiterStore, interval, maxIdle time.Duration, logger *zap.Logger) *LimiterCleanupJob {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if maxIdle <= 0 {
		maxIdle = DefaultLimiterMaxIdle
	}
	return &LimiterCleanupJob{
		store:    store,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the cleanup job
func (j *LimiterCleanupJob) Start() {
	j.wg.Add(1)
	go j.run()
	j.logger.Info("limiter cleanup job started", zap.Duration("interval", j.interval))
}

// Stop halts the job and waits for it to exit. Safe to call more than once.
func (j *LimiterCleanupJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
		j.wg.Wait()
		j.logger.Info("limiter cleanup job stopped")
	})
}

func (j *LimiterCleanupJob) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce performs a single eviction pass and returns how many limiters were removed.
func (j *LimiterCleanupJob) RunOnce() int {
	removed := j.store.Cleanup(j.maxIdle)
	if removed > 0 {
		j.logger.Debug("evicted idle rate limiters", zap.Int("removed", removed))
	}
	return removed
}
