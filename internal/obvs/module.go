package obvs

import (
	"novahub_backend/internal/adapters/storage"
	"novahub_backend/internal/events"
	apphttp "novahub_backend/internal/http"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, guard ProjectGuard, eventBus events.Bus, store storage.StorageService, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, guard, eventBus, store, bucket, log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string { return "obvs" }

func (m *Module) Service() *Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	obvs := ctx.Protected.Group("/obvs")
	{
		obvs.POST("", m.handler.Create)
		obvs.GET("", m.handler.List)
		obvs.GET("/:id", m.handler.Get)
		obvs.DELETE("/:id", m.handler.Delete)
		obvs.POST("/:id/validate", m.handler.Validate)
		obvs.POST("/:id/evidence", m.handler.UploadEvidence)
		obvs.GET("/:id/evidence", m.handler.EvidenceURL)
	}
}

var _ apphttp.Module = (*Module)(nil)
