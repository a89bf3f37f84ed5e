package scheduler

import (
	"context"
	"fmt"
	"time"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// PeriodicConfig combines what the periodic scheduler reads.
type PeriodicConfig interface {
	config.SchedulerConfig
	config.InsightsConfig
}

// Periodic enqueues the follow-up sweep on its cron spec.
type Periodic struct {
	scheduler *asynq.Scheduler
	entryID   string
	log       *logger.Logger
}

func NewPeriodic(cfg PeriodicConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	spec := cfg.GetFollowUpSweepCron()
	if spec == "" {
		spec = "@every 1h"
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: cfg.GetSalesLocation(),
		LogLevel: asynq.WarnLevel,
	})
	entryID, err := s.Register(spec, NewFollowUpSweepTask(),
		asynq.Queue(queueName(cfg)),
		asynq.Unique(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("register follow-up sweep %q: %w", spec, err)
	}

	log.Info("follow-up sweep registered", "spec", spec, "entryId", entryID)
	return &Periodic{scheduler: s, entryID: entryID, log: log}, nil
}

// Run blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
