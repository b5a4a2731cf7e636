package scheduler

import (
	"context"
	"time"

	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultRescoreInterval = time.Hour
	defaultSyncInterval    = 6 * time.Hour
	defaultCleanupInterval = 24 * time.Hour
)

// ProjectLister enumerates projects for per-project jobs.
type ProjectLister interface {
	ListAllIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Periodic enqueues the recurring jobs on fixed intervals. Runs inside
// the scheduler binary next to the worker.
type Periodic struct {
	client   *Client
	projects ProjectLister
	log      *logger.Logger

	rescoreInterval time.Duration
	syncInterval    time.Duration
	cleanupInterval time.Duration
}

func NewPeriodic(client *Client, projects ProjectLister, log *logger.Logger, rescoreInterval, syncInterval, cleanupInterval time.Duration) *Periodic {
	if rescoreInterval <= 0 {
		rescoreInterval = defaultRescoreInterval
	}
	if syncInterval <= 0 {
		syncInterval = defaultSyncInterval
	}
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	return &Periodic{
		client:          client,
		projects:        projects,
		log:             log,
		rescoreInterval: rescoreInterval,
		syncInterval:    syncInterval,
		cleanupInterval: cleanupInterval,
	}
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.client == nil {
		return
	}

	rescore := time.NewTicker(p.rescoreInterval)
	sync := time.NewTicker(p.syncInterval)
	cleanup := time.NewTicker(p.cleanupInterval)
	defer rescore.Stop()
	defer sync.Stop()
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-rescore.C:
			if err := p.client.EnqueueLeadsRescore(ctx); err != nil {
				p.log.Warn("enqueue lead rescore failed", "error", err)
			}
		case <-sync.C:
			p.enqueueFinanceSyncs(ctx)
		case <-cleanup.C:
			if err := p.client.EnqueueAuthCleanupTokens(ctx); err != nil {
				p.log.Warn("enqueue token cleanup failed", "error", err)
			}
		}
	}
}

func (p *Periodic) enqueueFinanceSyncs(ctx context.Context) {
	if p.projects == nil {
		return
	}

	ids, err := p.projects.ListAllIDs(ctx)
	if err != nil {
		p.log.Warn("list projects for finance sync failed", "error", err)
		return
	}

	for _, id := range ids {
		if err := p.client.EnqueueFinanceSync(ctx, id); err != nil {
			p.log.Warn("enqueue finance sync failed", "error", err, "projectId", id)
		}
	}
}
