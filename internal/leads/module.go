// Package leads provides the CRM bounded context: pipeline management,
// automatic lead scoring and outreach email generation.
package leads

import (
	"novahub_backend/internal/events"
	apphttp "novahub_backend/internal/http"
	"novahub_backend/internal/leads/handler"
	"novahub_backend/internal/leads/pitch"
	"novahub_backend/internal/leads/repository"
	"novahub_backend/internal/leads/scoring"
	"novahub_backend/internal/leads/service"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	scorer  *scoring.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
// The drafter may be nil when AI is disabled; pitches then come from templates.
func NewModule(
	pool *pgxpool.Pool,
	guard service.ProjectGuard,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
	drafter pitch.Drafter,
	users handler.UserReader,
	mailer handler.PitchMailer,
	appBaseURL string,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, guard, eventBus, log)
	scorer := scoring.New(repo, eventBus, log)
	pitcher := pitch.New(drafter, log)
	h := handler.New(svc, scorer, pitcher, users, mailer, val, appBaseURL)

	return &Module{
		handler: h,
		service: svc,
		scorer:  scorer,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Scorer exposes the scoring service for the background rescore task.
func (m *Module) Scorer() *scoring.Service {
	return m.scorer
}

// Repository exposes the lead repository for cross-module readers.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/leads", m.handler.Create)
	ctx.Protected.GET("/leads", m.handler.List)
	ctx.Protected.GET("/leads/:id", m.handler.Get)
	ctx.Protected.PUT("/leads/:id", m.handler.Update)
	ctx.Protected.DELETE("/leads/:id", m.handler.Delete)
	ctx.Protected.PATCH("/leads/:id/etapa", m.handler.ChangeStage)
	ctx.Protected.GET("/leads/:id/history", m.handler.StatusHistory)
	ctx.Protected.POST("/leads/:id/score", m.handler.Score)
	ctx.Protected.POST("/leads/:id/pitch", m.handler.GeneratePitch)
	ctx.Protected.GET("/leads/:id/qr", m.handler.ShareQR)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
