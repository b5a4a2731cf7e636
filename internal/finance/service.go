package finance

import (
	"context"
	"sort"
	"time"

	"novahub_backend/internal/events"
	"novahub_backend/platform/config"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency bounds parallel page fetches against the provider.
const fetchConcurrency = 4

// ProjectGuard checks project membership before financial data access.
type ProjectGuard interface {
	RequireMember(ctx context.Context, projectID, userID uuid.UUID) error
}

// SyncResult reports the outcome of a provider sync run.
type SyncResult struct {
	Synced  int     `json:"synced"`
	Summary Summary `json:"summary"`
}

type Service struct {
	repo     *Repository
	guard    ProjectGuard
	provider Provider
	cache    *SummaryCache
	bus      events.Bus
	cfg      config.StripeConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repo *Repository, guard ProjectGuard, provider Provider, cache *SummaryCache, bus events.Bus, cfg config.StripeConfig, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		guard:    guard,
		provider: provider,
		cache:    cache,
		bus:      bus,
		cfg:      cfg,
		log:      log.WithModule("finance"),
		now:      time.Now,
	}
}

// Sync pulls the provider's transaction window, upserts it and recomputes
// the project metrics. Pages are fetched concurrently.
func (s *Service) Sync(ctx context.Context, actorID, projectID uuid.UUID) (SyncResult, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return SyncResult{}, err
	}
	return s.sync(ctx, projectID)
}

// SyncScheduled is the entry point for the background sync job. It skips
// the membership check since the scheduler acts on behalf of the system.
func (s *Service) SyncScheduled(ctx context.Context, projectID uuid.UUID) (SyncResult, error) {
	return s.sync(ctx, projectID)
}

func (s *Service) sync(ctx context.Context, projectID uuid.UUID) (SyncResult, error) {
	since := s.now().Add(-s.cfg.GetStripeSyncWindow())

	pages, err := s.provider.PageCount(ctx, projectID, since)
	if err != nil {
		return SyncResult{}, err
	}

	fetched := make([][]Transaction, pages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for page := 0; page < pages; page++ {
		g.Go(func() error {
			txns, err := s.provider.FetchPage(gctx, projectID, since, page)
			if err != nil {
				return err
			}
			fetched[page] = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncResult{}, err
	}

	var txns []Transaction
	for _, batch := range fetched {
		txns = append(txns, batch...)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].OccurredAt.Before(txns[j].OccurredAt) })

	synced, err := s.repo.UpsertTransactions(ctx, projectID, txns)
	if err != nil {
		return SyncResult{}, err
	}

	all, err := s.repo.ListTransactions(ctx, projectID)
	if err != nil {
		return SyncResult{}, err
	}
	summary := ComputeSummary(all)

	if err := s.repo.SaveMetrics(ctx, projectID, summary); err != nil {
		return SyncResult{}, err
	}
	s.cache.Invalidate(ctx, projectID)

	s.bus.Publish(ctx, events.StripeSyncCompleted{
		BaseEvent:    events.NewBaseEvent(),
		ProjectID:    projectID,
		Synced:       synced,
		TotalRevenue: summary.TotalRevenue,
		MRR:          summary.MRR,
	})
	s.log.Info("stripe sync completed", "projectId", projectID, "synced", synced, "mrr", summary.MRR)

	return SyncResult{Synced: synced, Summary: summary}, nil
}

// Dashboard returns the project's revenue summary, served from cache when
// a fresh entry exists.
func (s *Service) Dashboard(ctx context.Context, actorID, projectID uuid.UUID) (Summary, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return Summary{}, err
	}

	if cached, _ := s.cache.Get(ctx, projectID); cached != nil {
		return *cached, nil
	}

	txns, err := s.repo.ListTransactions(ctx, projectID)
	if err != nil {
		return Summary{}, err
	}
	summary := ComputeSummary(txns)
	s.cache.Set(ctx, projectID, summary)

	return summary, nil
}
