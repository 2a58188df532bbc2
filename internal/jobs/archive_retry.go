package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"intervue/internal/session"
)

// ArchiveRetryJob periodically re-attempts record commits that failed when
// their session completed. Sessions keep serving read traffic in the meantime.
type ArchiveRetryJob struct {
	hub    *session.Hub
	config *ArchiveRetryConfig
	logger *zap.Logger
	cron   *cron.Cron
}

type ArchiveRetryConfig struct {
	Schedule string        // Cron schedule (e.g., "@every 5m")
	Timeout  time.Duration // Per-sweep deadline
	Enabled  bool          // Whether to run retries
}

func NewArchiveRetryJob(hub *session.Hub, config *ArchiveRetryConfig, logger *zap.Logger) *ArchiveRetryJob {
	return &ArchiveRetryJob{
		hub:    hub,
		config: config,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start begins the scheduled retry job
func (arj *ArchiveRetryJob) Start() error {
	if !arj.config.Enabled {
		arj.logger.Info("archive retry is disabled, skipping scheduler")
		return nil
	}

	arj.logger.Info("starting archive retry job", zap.String("schedule", arj.config.Schedule))

	_, err := arj.cron.AddFunc(arj.config.Schedule, func() {
		if err := arj.RunSweep(); err != nil {
			arj.logger.Error("archive retry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule archive retry job: %w", err)
	}

	arj.cron.Start()
	return nil
}

// Stop stops the scheduled retry job
func (arj *ArchiveRetryJob) Stop() {
	if arj.cron != nil {
		arj.cron.Stop()
		arj.logger.Info("archive retry job stopped")
	}
}

// RunSweep performs a single pass over all live sessions.
func (arj *ArchiveRetryJob) RunSweep() error {
	timeout := arj.config.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var lastErr error
	for _, mgr := range arj.hub.Managers() {
		if err := mgr.RetryArchive(ctx); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
