package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-books/internal/app"
	"github.com/odyssey-erp/odyssey-books/internal/books"
	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	"github.com/odyssey-erp/odyssey-books/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if cfg.StoreDriver != app.StoreDriverPostgres {
		logger.Error("worker needs the postgres store", slog.String("store", cfg.StoreDriver))
		os.Exit(1)
	}

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	b, err := books.Open(ctx, store, books.Options{
		BaseCurrency:        cfg.BaseCurrency,
		DefaultLocationCode: cfg.DefaultLocationCode,
		SeedDefaults:        cfg.SeedDefaults,
		Audit:               shared.NewAuditLogger(store.Pool),
		Logger:              logger,
	})
	if err != nil {
		logger.Error("open books", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := jobmetrics.NewMetrics(nil)
	integrityJob := jobs.NewLedgerIntegrityJob(b.Reports, b.Journals, logger, metrics)
	reconcileJob := jobs.NewInventoryReconcileJob(b.Inventory, b.Reports, logger, metrics)

	integrityTask, err := jobs.NewLedgerIntegrityTask(nil)
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	reconcileTask, err := jobs.NewInventoryReconcileTask(nil)
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}

	var cron []jobs.CronRegistration
	if cfg.IntegrityCheckCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.IntegrityCheckCron, Task: integrityTask})
	}
	if cfg.InventoryReconCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.InventoryReconCron, Task: reconcileTask})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskInventoryReconcile, Handler: reconcileJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
