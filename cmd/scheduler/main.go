package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"novahub_backend/internal/adapters"
	authrepo "novahub_backend/internal/auth/repository"
	"novahub_backend/internal/email"
	"novahub_backend/internal/events"
	"novahub_backend/internal/finance"
	leadrepo "novahub_backend/internal/leads/repository"
	"novahub_backend/internal/leads/scoring"
	"novahub_backend/internal/notification"
	"novahub_backend/internal/projects"
	"novahub_backend/internal/scheduler"
	"novahub_backend/platform/config"
	"novahub_backend/platform/db"
	"novahub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

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

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Notifications fire for events published by the background jobs
	projectsRepo := projects.NewRepository(pool)
	projectsSvc := projects.NewService(projectsRepo, log)
	notificationModule := notification.NewModule(pool, sender, projectsSvc, log)
	notificationModule.RegisterHandlers(eventBus)

	// Worker-side services (no HTTP handlers required)
	scorer := scoring.New(leadrepo.New(pool), eventBus, log)

	var redisClient *redis.Client
	if cfg.GetRedisURL() != "" {
		redisClient, err = finance.NewRedisClient(cfg.GetRedisURL())
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer redisClient.Close()
	}
	financeCache := finance.NewSummaryCache(redisClient, cfg.GetCacheTTL(), log)
	financeSvc := finance.NewService(finance.NewRepository(pool), projectsSvc, finance.NewMockProvider(), financeCache, eventBus, cfg, log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	rescoreInterval := getDurationEnv("LEADS_RESCORE_INTERVAL", time.Hour)
	syncInterval := getDurationEnv("FINANCE_SYNC_INTERVAL", 6*time.Hour)
	cleanupInterval := getDurationEnv("AUTH_TOKEN_CLEANUP_INTERVAL", 24*time.Hour)
	periodic := scheduler.NewPeriodic(client, projectsRepo, log, rescoreInterval, syncInterval, cleanupInterval)
	go periodic.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, scorer, adapters.NewFinanceSyncRunner(financeSvc), authrepo.New(pool), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
