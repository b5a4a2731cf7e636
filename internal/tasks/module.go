// Package tasks provides the Kanban task board bounded context module.
package tasks

import (
	"novahub_backend/internal/events"
	apphttp "novahub_backend/internal/http"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tasks bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the tasks module with all its dependencies.
func NewModule(pool *pgxpool.Pool, guard ProjectGuard, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, guard, eventBus, log)
	h := NewHandler(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tasks"
}

// RegisterRoutes mounts task routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/tasks", m.handler.Create)
	ctx.Protected.GET("/tasks", m.handler.List)
	ctx.Protected.GET("/tasks/:id", m.handler.Get)
	ctx.Protected.PUT("/tasks/:id", m.handler.Update)
	ctx.Protected.PATCH("/tasks/:id/status", m.handler.UpdateStatus)
	ctx.Protected.POST("/tasks/:id/complete", m.handler.Complete)
	ctx.Protected.DELETE("/tasks/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
