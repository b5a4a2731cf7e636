package kpis

import (
	"novahub_backend/internal/events"
	apphttp "novahub_backend/internal/http"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, guard ProjectGuard, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, guard, eventBus, log)
	return &Module{handler: NewHandler(svc, val)}
}

func (m *Module) Name() string { return "kpis" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	kpis := ctx.Protected.Group("/kpis")
	{
		kpis.POST("", m.handler.Create)
		kpis.GET("", m.handler.List)
		kpis.GET("/pending", m.handler.ListPending)
		kpis.GET("/:id", m.handler.Get)
		kpis.POST("/:id/validate", m.handler.Validate)
		kpis.DELETE("/:id", m.handler.Delete)
	}
}

var _ apphttp.Module = (*Module)(nil)
