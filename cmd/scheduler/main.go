package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadnest/internal/auth"
	"leadnest/internal/cron"
	"leadnest/internal/email"
	"leadnest/internal/events"
	"leadnest/internal/followups"
	"leadnest/internal/notification"
	"leadnest/internal/scheduler"
	"leadnest/platform/config"
	"leadnest/platform/db"
	"leadnest/platform/logger"
	"leadnest/platform/metrics"
	"leadnest/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const cronLockKey = "leadnest:cron"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	redisOpts, err := scheduler.RedisOptions(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("invalid redis configuration", "error", err)
		panic("invalid redis configuration: " + err.Error())
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	// The scheduler publishes password reset events only through the API
	// process, so the bus here has no subscribers.
	eventBus := events.NewInMemoryBus(log)
	authModule := auth.NewModule(pool, cfg, eventBus, validator.New(), log)
	notificationModule := notification.New(pool, sender, log)

	followupsModule, err := followups.NewModule(pool, notificationModule.InApp(), sender, cfg, cfg.GetAppBaseURL(), log)
	if err != nil {
		log.Error("failed to initialize follow-up module", "error", err)
		panic("failed to initialize follow-up module: " + err.Error())
	}

	cronLock, err := cron.NewRedisLock(cron.NewRedisStore(redisClient), cronLockKey, 0)
	if err != nil {
		log.Error("failed to initialize cron lock", "error", err)
		panic("failed to initialize cron lock: " + err.Error())
	}

	// Without a metrics listener the cron metrics stay nil and Observe is a
	// no-op.
	var cronMetrics *metrics.CronJobMetrics
	var metricsListener net.Listener
	registry := prometheus.NewRegistry()
	if addr := cfg.GetSchedulerMetricsAddr(); addr != "" {
		metricsListener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("failed to open metrics listener", "error", err, "addr", addr)
			panic("failed to open metrics listener: " + err.Error())
		}
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		cronMetrics = metrics.NewCronJobMetrics(registry)
		log.Info("scheduler metrics listening", "addr", addr)
	}

	cronService, err := cron.NewService(cron.ServiceParams{
		Logger: log,
		Registry: cron.NewRegistry(
			followupsModule.Service(),
			scheduler.NewResetTokenCleanup(authModule.Service(), log),
		),
		Lock:     cronLock,
		Metrics:  cronMetrics,
		Interval: cfg.GetCronInterval(),
	})
	if err != nil {
		log.Error("failed to initialize cron service", "error", err)
		panic("failed to initialize cron service: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, pool, sender, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error { return cronService.Run(gctx) })
	if metricsListener != nil {
		g.Go(func() error { return metrics.Serve(gctx, metricsListener, registry) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
