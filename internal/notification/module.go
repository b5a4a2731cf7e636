// Package notification delivers in-app and email notifications in
// response to domain events. Domain modules publish events and stay
// unaware of delivery channels.
package notification

import (
	"context"
	"fmt"

	"novahub_backend/internal/email"
	"novahub_backend/internal/events"
	apphttp "novahub_backend/internal/http"
	notifhandler "novahub_backend/internal/notification/handler"
	"novahub_backend/internal/notification/inapp"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectMemberReader lists the members of a project for fan-out.
type ProjectMemberReader interface {
	MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

type Module struct {
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	sender       email.Sender
	members      ProjectMemberReader
	log          *logger.Logger
}

func NewModule(pool *pgxpool.Pool, sender email.Sender, members ProjectMemberReader, log *logger.Logger) *Module {
	moduleLog := log.WithModule("notification")
	svc := inapp.NewService(inapp.NewRepository(pool), moduleLog)
	return &Module{
		inAppService: svc,
		inAppHandler: notifhandler.NewHTTPHandler(svc),
		sender:       sender,
		members:      members,
		log:          moduleLog,
	}
}

func (m *Module) Name() string { return "notification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

// InAppService exposes the in-app service for other modules.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.LeadScored{}.EventName(), m)
	bus.Subscribe(events.TaskCompleted{}.EventName(), m)
	bus.Subscribe(events.OBVValidated{}.EventName(), m)
	bus.Subscribe(events.KPIValidated{}.EventName(), m)
	bus.Subscribe(events.StripeSyncCompleted{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		return m.handleUserSignedUp(ctx, e)
	case events.LeadScored:
		return m.handleLeadScored(ctx, e)
	case events.TaskCompleted:
		return m.handleTaskCompleted(ctx, e)
	case events.OBVValidated:
		return m.handleOBVValidated(ctx, e)
	case events.KPIValidated:
		return m.handleKPIValidated(ctx, e)
	case events.StripeSyncCompleted:
		return m.handleStripeSyncCompleted(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleUserSignedUp(ctx context.Context, e events.UserSignedUp) error {
	if m.sender == nil {
		return nil
	}
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Name); err != nil {
		m.log.Error("welcome email failed", "error", err, "email", e.Email)
	}
	return nil
}

// handleLeadScored notifies the lead owner when a lead classifies as hot.
func (m *Module) handleLeadScored(ctx context.Context, e events.LeadScored) error {
	if e.Classification != "hot" || e.OwnerID == nil {
		return nil
	}

	leadID := e.LeadID
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       *e.OwnerID,
		Title:        "Lead caliente",
		Content:      fmt.Sprintf("El lead %s ha alcanzado una puntuación de %d. Contacta cuanto antes.", e.Nombre, e.TotalScore),
		ResourceID:   &leadID,
		ResourceType: "lead",
		Category:     "warning",
	})
}

func (m *Module) handleTaskCompleted(ctx context.Context, e events.TaskCompleted) error {
	taskID := e.TaskID
	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.UserID,
		Title:        "Tarea completada",
		Content:      fmt.Sprintf("La tarea %q se ha marcado como completada.", e.Titulo),
		ResourceID:   &taskID,
		ResourceType: "task",
		Category:     "success",
	})
}

func (m *Module) handleOBVValidated(ctx context.Context, e events.OBVValidated) error {
	obvID := e.OBVID
	title := "OBV validado"
	content := fmt.Sprintf("Tu OBV %q ha sido validado por un compañero.", e.Titulo)
	category := "success"
	if !e.Approved {
		title = "OBV rechazado"
		content = fmt.Sprintf("Tu OBV %q ha sido rechazado en la validación.", e.Titulo)
		category = "error"
	}

	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.CreatedBy,
		Title:        title,
		Content:      content,
		ResourceID:   &obvID,
		ResourceType: "obv",
		Category:     category,
	})
}

func (m *Module) handleKPIValidated(ctx context.Context, e events.KPIValidated) error {
	kpiID := e.KPIID
	title := "KPI validado"
	content := fmt.Sprintf("Tu KPI %q ha sido validado por un compañero.", e.Tipo)
	category := "success"
	if !e.Approved {
		title = "KPI rechazado"
		content = fmt.Sprintf("Tu KPI %q ha sido rechazado en la validación.", e.Tipo)
		category = "error"
	}

	return m.inAppService.Send(ctx, inapp.SendParams{
		UserID:       e.CreatedBy,
		Title:        title,
		Content:      content,
		ResourceID:   &kpiID,
		ResourceType: "kpi",
		Category:     category,
	})
}

// handleStripeSyncCompleted notifies every project member with the fresh
// revenue numbers.
func (m *Module) handleStripeSyncCompleted(ctx context.Context, e events.StripeSyncCompleted) error {
	if m.members == nil {
		return nil
	}

	ids, err := m.members.MemberIDs(ctx, e.ProjectID)
	if err != nil {
		m.log.Error("resolve project members failed", "error", err, "projectId", e.ProjectID)
		return nil
	}

	projectID := e.ProjectID
	for _, userID := range ids {
		err := m.inAppService.Send(ctx, inapp.SendParams{
			UserID:       userID,
			Title:        "Sincronización financiera completada",
			Content:      fmt.Sprintf("Se han sincronizado %d transacciones. MRR actual: %.2f €.", e.Synced, e.MRR),
			ResourceID:   &projectID,
			ResourceType: "project",
			Category:     "info",
		})
		if err != nil {
			m.log.Error("sync notification failed", "error", err, "userId", userID)
		}
	}
	return nil
}

var _ apphttp.Module = (*Module)(nil)
var _ events.Handler = (*Module)(nil)
