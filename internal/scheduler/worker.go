package scheduler

import (
	"context"
	"fmt"

	"novahub_backend/platform/config"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Rescorer recomputes scores for every open lead.
type Rescorer interface {
	RescoreOpenLeads(ctx context.Context) (int, error)
}

// FinanceSyncer runs a provider sync for one project.
type FinanceSyncer interface {
	SyncScheduled(ctx context.Context, projectID uuid.UUID) error
}

// TokenCleaner removes expired refresh tokens.
type TokenCleaner interface {
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	rescorer Rescorer
	syncer   FinanceSyncer
	cleaner  TokenCleaner
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, rescorer Rescorer, syncer FinanceSyncer, cleaner TokenCleaner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		rescorer: rescorer,
		syncer:   syncer,
		cleaner:  cleaner,
		log:      log,
	}

	mux.HandleFunc(TaskLeadsRescore, w.handleLeadsRescore)
	mux.HandleFunc(TaskFinanceSync, w.handleFinanceSync)
	mux.HandleFunc(TaskAuthCleanupTokens, w.handleAuthCleanupTokens)

	return w, nil
}

func (w *Worker) handleLeadsRescore(ctx context.Context, _ *asynq.Task) error {
	if w.rescorer == nil {
		return nil
	}

	scored, err := w.rescorer.RescoreOpenLeads(ctx)
	if err != nil {
		return err
	}
	w.log.Info("scheduled rescore finished", "scored", scored)
	return nil
}

func (w *Worker) handleFinanceSync(ctx context.Context, task *asynq.Task) error {
	if w.syncer == nil {
		return nil
	}

	payload, err := ParseFinanceSyncPayload(task)
	if err != nil {
		return err
	}

	projectID, err := uuid.Parse(payload.ProjectID)
	if err != nil {
		return err
	}

	return w.syncer.SyncScheduled(ctx, projectID)
}

func (w *Worker) handleAuthCleanupTokens(ctx context.Context, _ *asynq.Task) error {
	if w.cleaner == nil {
		return nil
	}

	deleted, err := w.cleaner.DeleteExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		w.log.Info("expired refresh tokens removed", "deleted", deleted)
	}
	return nil
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
