package kpis

import (
	"context"
	"strings"

	"novahub_backend/internal/events"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	StatusPendiente = "pendiente"
	StatusValidado  = "validado"
	StatusRechazado = "rechazado"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Create(ctx context.Context, p CreateParams) (KPI, error)
	Get(ctx context.Context, id uuid.UUID) (KPI, error)
	List(ctx context.Context, projectID uuid.UUID) ([]KPI, error)
	ListPending(ctx context.Context, projectID uuid.UUID) ([]KPI, error)
	SetValidationStatus(ctx context.Context, id, validatedBy uuid.UUID, status string) (KPI, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectGuard checks project membership before KPI access.
type ProjectGuard interface {
	RequireMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type Input struct {
	ProjectID uuid.UUID
	Tipo      string
	Valor     float64
	Periodo   string
	Evidencia *string
}

type Service struct {
	repo  Repo
	guard ProjectGuard
	bus   events.Bus
	log   *logger.Logger
}

func NewService(repo Repo, guard ProjectGuard, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, bus: bus, log: log.WithModule("kpis")}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, in Input) (KPI, error) {
	if strings.TrimSpace(in.Tipo) == "" {
		return KPI{}, apperr.Validation("tipo is required")
	}
	if strings.TrimSpace(in.Periodo) == "" {
		return KPI{}, apperr.Validation("periodo is required")
	}
	if in.Valor < 0 {
		return KPI{}, apperr.Validation("valor cannot be negative")
	}
	if err := s.guard.RequireMember(ctx, in.ProjectID, actorID); err != nil {
		return KPI{}, err
	}

	return s.repo.Create(ctx, CreateParams{
		ProjectID: in.ProjectID,
		Tipo:      strings.TrimSpace(in.Tipo),
		Valor:     in.Valor,
		Periodo:   strings.TrimSpace(in.Periodo),
		Evidencia: in.Evidencia,
		CreatedBy: actorID,
	})
}

func (s *Service) Get(ctx context.Context, actorID, kpiID uuid.UUID) (KPI, error) {
	kpi, err := s.repo.Get(ctx, kpiID)
	if err != nil {
		return KPI{}, err
	}
	if err := s.guard.RequireMember(ctx, kpi.ProjectID, actorID); err != nil {
		return KPI{}, err
	}
	return kpi, nil
}

func (s *Service) List(ctx context.Context, actorID, projectID uuid.UUID) ([]KPI, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, projectID)
}

// ListPendingForValidation returns pending KPIs the actor may validate.
// The actor's own submissions are excluded since self-validation is not
// allowed.
func (s *Service) ListPendingForValidation(ctx context.Context, actorID, projectID uuid.UUID) ([]KPI, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	pending, err := s.repo.ListPending(ctx, projectID)
	if err != nil {
		return nil, err
	}

	out := make([]KPI, 0, len(pending))
	for _, k := range pending {
		if k.CreatedBy == actorID {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

// Validate resolves a pending KPI with a peer decision.
func (s *Service) Validate(ctx context.Context, actorID, kpiID uuid.UUID, approve bool) (KPI, error) {
	kpi, err := s.repo.Get(ctx, kpiID)
	if err != nil {
		return KPI{}, err
	}
	if err := s.guard.RequireMember(ctx, kpi.ProjectID, actorID); err != nil {
		return KPI{}, err
	}
	if kpi.CreatedBy == actorID {
		return KPI{}, apperr.Forbidden("cannot validate your own kpi")
	}

	status := StatusValidado
	if !approve {
		status = StatusRechazado
	}
	validated, err := s.repo.SetValidationStatus(ctx, kpiID, actorID, status)
	if err != nil {
		return KPI{}, err
	}

	s.bus.Publish(ctx, events.KPIValidated{
		BaseEvent:   events.NewBaseEvent(),
		KPIID:       validated.ID,
		ProjectID:   validated.ProjectID,
		CreatedBy:   validated.CreatedBy,
		ValidatedBy: actorID,
		Tipo:        validated.Tipo,
		Approved:    approve,
	})
	s.log.Info("kpi validated", "kpiId", validated.ID, "approved", approve)

	return validated, nil
}

func (s *Service) Delete(ctx context.Context, actorID, kpiID uuid.UUID) error {
	kpi, err := s.repo.Get(ctx, kpiID)
	if err != nil {
		return err
	}
	if kpi.CreatedBy != actorID {
		return apperr.Forbidden("only the creator can delete a kpi")
	}
	if kpi.Status != StatusPendiente {
		return apperr.Conflict("resolved kpis cannot be deleted")
	}
	return s.repo.Delete(ctx, kpiID)
}
