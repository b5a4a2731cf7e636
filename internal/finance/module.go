package finance

import (
	"novahub_backend/internal/events"
	apphttp "novahub_backend/internal/http"
	"novahub_backend/platform/config"
	"novahub_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, guard ProjectGuard, eventBus events.Bus, redisClient *redis.Client, cacheCfg config.CacheConfig, stripeCfg config.StripeConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	cache := NewSummaryCache(redisClient, cacheCfg.GetCacheTTL(), log)
	svc := NewService(repo, guard, NewMockProvider(), cache, eventBus, stripeCfg, log)
	return &Module{
		handler: NewHandler(svc),
		service: svc,
	}
}

func (m *Module) Name() string { return "finance" }

func (m *Module) Service() *Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	finance := ctx.Protected.Group("/finance")
	{
		finance.POST("/sync", m.handler.Sync)
		finance.GET("/dashboard", m.handler.Dashboard)
	}
}

var _ apphttp.Module = (*Module)(nil)
