package service

import (
	"context"

	"novahub_backend/internal/events"
	"novahub_backend/internal/leads/domain"
	"novahub_backend/internal/leads/repository"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"
	"novahub_backend/platform/phone"

	"github.com/google/uuid"
)

const opChangeStage = "leads.service.change_stage"

// ProjectGuard checks that a user belongs to a project before lead access.
type ProjectGuard interface {
	RequireMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type Service struct {
	repo  *repository.Repository
	guard ProjectGuard
	bus   events.Bus
	log   *logger.Logger
}

func New(repo *repository.Repository, guard ProjectGuard, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, bus: bus, log: log.WithModule("leads")}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, p repository.CreateParams) (repository.Lead, error) {
	if err := s.guard.RequireMember(ctx, p.ProjectID, actorID); err != nil {
		return repository.Lead{}, err
	}
	if p.Etapa == "" {
		p.Etapa = domain.EtapaProspecto
	}
	if !p.Etapa.Valid() {
		return repository.Lead{}, apperr.Validation("invalid pipeline stage: " + string(p.Etapa))
	}

	if p.Telefono != nil && *p.Telefono != "" {
		normalized := phone.NormalizeE164(*p.Telefono)
		p.Telefono = &normalized
	}

	lead, err := s.repo.Create(ctx, p)
	if err != nil {
		return repository.Lead{}, err
	}

	empresa := ""
	if lead.Empresa != nil {
		empresa = *lead.Empresa
	}
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		ProjectID: lead.ProjectID,
		OwnerID:   lead.OwnerID,
		Nombre:    lead.Nombre,
		Empresa:   empresa,
		Etapa:     string(lead.Etapa),
	})
	s.log.Info("lead created", "leadId", lead.ID, "projectId", lead.ProjectID)

	return lead, nil
}

func (s *Service) Get(ctx context.Context, actorID, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.Get(ctx, leadID)
	if err != nil {
		return repository.Lead{}, err
	}
	if err := s.guard.RequireMember(ctx, lead.ProjectID, actorID); err != nil {
		return repository.Lead{}, err
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, actorID, projectID uuid.UUID, f repository.ListFilter) ([]repository.Lead, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	if f.Etapa != "" && !f.Etapa.Valid() {
		return nil, apperr.Validation("invalid pipeline stage: " + string(f.Etapa))
	}
	return s.repo.List(ctx, projectID, f)
}

func (s *Service) Update(ctx context.Context, actorID, leadID uuid.UUID, p repository.UpdateParams) (repository.Lead, error) {
	if _, err := s.Get(ctx, actorID, leadID); err != nil {
		return repository.Lead{}, err
	}

	if p.Telefono != nil && *p.Telefono != "" {
		normalized := phone.NormalizeE164(*p.Telefono)
		p.Telefono = &normalized
	}

	return s.repo.Update(ctx, leadID, p)
}

func (s *Service) Delete(ctx context.Context, actorID, leadID uuid.UUID) error {
	if _, err := s.Get(ctx, actorID, leadID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, leadID)
}

// ChangeStage moves a lead through the pipeline, recording the transition
// in the status history and notifying subscribers.
func (s *Service) ChangeStage(ctx context.Context, actorID, leadID uuid.UUID, to domain.Etapa) (repository.Lead, error) {
	if !to.Valid() {
		return repository.Lead{}, apperr.Validation("invalid pipeline stage: " + string(to)).WithOp(opChangeStage)
	}

	current, err := s.Get(ctx, actorID, leadID)
	if err != nil {
		return repository.Lead{}, err
	}
	if current.Etapa == to {
		return current, nil
	}

	lead, err := s.repo.UpdateEtapa(ctx, leadID, to)
	if err != nil {
		return repository.Lead{}, err
	}

	if err := s.repo.InsertStatusChange(ctx, leadID, current.Etapa, to, actorID); err != nil {
		s.log.Warn("status history write failed", "leadId", leadID, "error", err)
	}

	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		ProjectID: lead.ProjectID,
		FromEtapa: string(current.Etapa),
		ToEtapa:   string(to),
		ChangedBy: actorID,
	})

	return lead, nil
}

func (s *Service) StatusHistory(ctx context.Context, actorID, leadID uuid.UUID) ([]repository.StatusChange, error) {
	if _, err := s.Get(ctx, actorID, leadID); err != nil {
		return nil, err
	}
	return s.repo.ListStatusHistory(ctx, leadID)
}
