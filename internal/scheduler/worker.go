package scheduler

import (
	"context"
	"fmt"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper *FollowUpSweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper *FollowUpSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		sweeper: sweeper,
		log:     log,
	}
	w.mux.HandleFunc(TaskFollowUpSweep, w.handleFollowUpSweep)
	w.mux.HandleFunc(TaskFollowUpTenant, w.handleFollowUpTenant)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleFollowUpSweep(ctx context.Context, task *asynq.Task) error {
	queued, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.log.TaskFailed(task.Type(), err)
		return err
	}
	w.log.Info("follow-up sweep fanned out", "tenants", queued)
	return nil
}

func (w *Worker) handleFollowUpTenant(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpTenantPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", payload.TenantID, asynq.SkipRetry)
	}

	if _, err := w.sweeper.ProcessTenant(ctx, tenantID); err != nil {
		w.log.TaskFailed(task.Type(), err)
		return err
	}
	return nil
}
