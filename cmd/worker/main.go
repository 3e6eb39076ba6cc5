package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/backoffice/internal/app"
	"github.com/odyssey-erp/backoffice/internal/backend"
	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
	"github.com/odyssey-erp/backoffice/internal/mailer"
	"github.com/odyssey-erp/backoffice/internal/platform/cache"
	"github.com/odyssey-erp/backoffice/internal/reports"
	"github.com/odyssey-erp/backoffice/jobs"
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
	metrics := jobmetrics.NewMetrics(nil)

	smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	emailJob := jobs.NewReportEmailJob(smtp, logger, metrics)

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskReportEmail, Handler: emailJob.Handle},
	}
	var cron []jobs.CronRegistration

	if cfg.DigestEnabled() {
		var redisClient *redis.Client
		if client, err := cache.New(ctx, cfg.Redis()); err != nil {
			logger.Warn("redis ping", slog.Any("error", err))
		} else if client != nil {
			redisClient = client
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
		records := backend.NewCachedClient(
			backend.NewClient(cfg.BackendURL, cfg.BackendTimeout),
			backend.NewCache(redisClient, cfg.CacheTTL),
			logger,
		).WithLoadTimeout(cfg.BackendTimeout)
		service := reports.NewService(records, cfg.BackendUserID, time.Now)
		digestJob := jobs.NewReportDigestJob(service, smtp, logger, metrics)

		digestTask, err := jobs.NewReportDigestTask(cfg.DigestTo, cfg.DigestReport, cfg.DigestLookbackDays)
		if err != nil {
			logger.Error("build digest task", slog.Any("error", err))
			os.Exit(1)
		}
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskReportDigest, Handler: digestJob.Handle})
		cron = append(cron, jobs.CronRegistration{Spec: cfg.DigestCron, Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
		logger.Info("report digest scheduled",
			slog.String("cron", cfg.DigestCron),
			slog.String("report", cfg.DigestReport),
			slog.String("to", cfg.DigestTo),
		)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: cfg.Redis().AsynqOpt(),
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if cfg.WorkerMetricsAddr != "" {
		srv := newMetricsServer(cfg.WorkerMetricsAddr, metrics)
		g.Go(func() error {
			logger.Info("worker metrics listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

// newMetricsServer serves the job collectors, since the worker has no other listener.
func newMetricsServer(addr string, metrics *jobmetrics.Metrics) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
