// Package projects provides the project workspace bounded context module.
// Every lead, task, OBV and KPI in the system belongs to a project.
package projects

import (
	apphttp "novahub_backend/internal/http"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the projects bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates and initializes the projects module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, log)
	h := NewHandler(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "projects"
}

// Service exposes membership checks to other modules.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts project routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/projects", m.handler.Create)
	ctx.Protected.GET("/projects", m.handler.List)
	ctx.Protected.GET("/projects/:id", m.handler.Get)
	ctx.Protected.PUT("/projects/:id", m.handler.Update)
	ctx.Protected.DELETE("/projects/:id", m.handler.Delete)
	ctx.Protected.POST("/projects/:id/members", m.handler.AddMember)
	ctx.Protected.GET("/projects/:id/members", m.handler.ListMembers)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
