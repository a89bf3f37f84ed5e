package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sales_crm_backend/internal/email"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/insights"
	"sales_crm_backend/internal/leads/playbook"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/internal/notification"
	"sales_crm_backend/internal/scheduler"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/db"
	"sales_crm_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName(), "sweepCron", cfg.GetFollowUpSweepCron())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	notificationModule := notification.New(email.NewSender(cfg), log)
	notificationModule.RegisterHandlers(eventBus)

	pb, err := playbook.Load(cfg.GetPlaybookPath())
	if err != nil {
		log.Error("failed to load playbook", "error", err)
		panic("failed to load playbook: " + err.Error())
	}
	leadRepo := repository.New(pool)
	insightSvc := insights.New(leadRepo, pb, cfg)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sweeper := scheduler.NewFollowUpSweeper(leadRepo, insightSvc, client, eventBus, log)

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go func() {
		if err := periodic.Run(ctx); err != nil {
			log.Error("periodic scheduler stopped", "error", err)
			stop()
		}
	}()

	worker, err := scheduler.NewWorker(cfg, sweeper, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
