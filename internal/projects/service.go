package projects

import (
	"context"

	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log.WithModule("projects")}
}

// Create registers a project and adds the creator as its owner member.
func (s *Service) Create(ctx context.Context, nombre string, descripcion *string, createdBy uuid.UUID) (Project, error) {
	project, err := s.repo.Create(ctx, nombre, descripcion, createdBy)
	if err != nil {
		return Project{}, err
	}

	if err := s.repo.AddMember(ctx, project.ID, createdBy, "owner"); err != nil {
		return Project{}, err
	}

	s.log.Info("project created", "projectId", project.ID, "nombre", project.Nombre)
	return project, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (Project, error) {
	if err := s.RequireMember(ctx, id, userID); err != nil {
		return Project{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, nombre string, descripcion *string) (Project, error) {
	if err := s.RequireMember(ctx, id, userID); err != nil {
		return Project{}, err
	}
	return s.repo.Update(ctx, id, nombre, descripcion)
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if project.CreatedBy != userID {
		return apperr.Forbidden("only the project creator can delete it")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddMember(ctx context.Context, projectID, actorID, userID uuid.UUID, rol string) error {
	if err := s.RequireMember(ctx, projectID, actorID); err != nil {
		return err
	}
	return s.repo.AddMember(ctx, projectID, userID, rol)
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID uuid.UUID) ([]Member, error) {
	if err := s.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectID)
}

// MemberIDs returns the user ids of every project member. Intended for
// internal fan-out (notifications), so there is no actor check.
func (s *Service) MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	members, err := s.repo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// RequireMember returns a forbidden error when the user does not belong to
// the project. Other modules use this for project-scoped access checks.
func (s *Service) RequireMember(ctx context.Context, projectID, userID uuid.UUID) error {
	ok, err := s.repo.IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("not a member of this project")
	}
	return nil
}
