package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"novahub_backend/internal/adapters"
	"novahub_backend/internal/adapters/storage"
	"novahub_backend/internal/auth"
	"novahub_backend/internal/email"
	"novahub_backend/internal/events"
	"novahub_backend/internal/finance"
	apphttp "novahub_backend/internal/http"
	"novahub_backend/internal/http/router"
	"novahub_backend/internal/kpis"
	"novahub_backend/internal/leads"
	"novahub_backend/internal/leads/pitch"
	"novahub_backend/internal/notification"
	"novahub_backend/internal/obvs"
	"novahub_backend/internal/projects"
	"novahub_backend/internal/tasks"
	"novahub_backend/platform/config"
	"novahub_backend/platform/db"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for OBV evidence uploads (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "obv-evidence", cfg.GetMinioBucketEvidence())
	log.Info("storage service initialized", "evidenceBucket", cfg.GetMinioBucketEvidence())

	var redisClient *redis.Client
	if cfg.GetRedisURL() != "" {
		redisClient, err = finance.NewRedisClient(cfg.GetRedisURL())
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL not configured; dashboard caching disabled")
	}

	// AI pitch drafter is optional; templates cover the disabled case
	var drafter pitch.Drafter
	if cfg.IsAIEnabled() {
		agent, err := pitch.NewAgent(cfg.GetKimiAPIKey())
		if err != nil {
			log.Error("failed to initialize pitch agent", "error", err)
			panic("failed to initialize pitch agent: " + err.Error())
		}
		drafter = agent
		log.Info("AI pitch drafter initialized")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, eventBus, log, val)
	projectsModule := projects.NewModule(pool, val, log)
	guard := projectsModule.Service()

	userReader := adapters.NewUserNameReader(authModule.Repository())
	leadsModule := leads.NewModule(pool, guard, eventBus, val, log, drafter, userReader, sender, cfg.AppBaseURL)
	tasksModule := tasks.NewModule(pool, guard, eventBus, val, log)
	obvsModule := obvs.NewModule(pool, guard, eventBus, storageSvc, cfg.GetMinioBucketEvidence(), val, log)
	kpisModule := kpis.NewModule(pool, guard, eventBus, val, log)
	financeModule := finance.NewModule(pool, guard, eventBus, redisClient, cfg, cfg, log)

	// Notification module subscribes to domain events
	notificationModule := notification.NewModule(pool, sender, projectsModule.Service(), log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			projectsModule,
			leadsModule,
			tasksModule,
			obvsModule,
			kpisModule,
			financeModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
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
