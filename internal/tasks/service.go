package tasks

import (
	"context"
	"strings"
	"time"

	"novahub_backend/internal/events"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

// Status is a task's position on the Kanban board.
type Status string

const (
	StatusPendiente  Status = "pendiente"
	StatusEnProgreso Status = "en_progreso"
	StatusCompletada Status = "completada"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendiente, StatusEnProgreso, StatusCompletada:
		return true
	}
	return false
}

// ProjectGuard checks project membership before task access.
type ProjectGuard interface {
	RequireMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type Service struct {
	repo  *Repository
	guard ProjectGuard
	bus   events.Bus
	log   *logger.Logger
}

func NewService(repo *Repository, guard ProjectGuard, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, bus: bus, log: log.WithModule("tasks")}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, p CreateParams) (Task, error) {
	if strings.TrimSpace(p.Titulo) == "" {
		return Task{}, apperr.Validation("titulo is required")
	}
	if p.ProjectID == uuid.Nil {
		return Task{}, apperr.Validation("projectId is required")
	}
	if err := s.guard.RequireMember(ctx, p.ProjectID, actorID); err != nil {
		return Task{}, err
	}
	p.CreatedBy = actorID
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, actorID, taskID uuid.UUID) (Task, error) {
	task, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if err := s.guard.RequireMember(ctx, task.ProjectID, actorID); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, actorID, projectID uuid.UUID, status Status) ([]Task, error) {
	if err := s.guard.RequireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("invalid task status: " + string(status))
	}
	return s.repo.List(ctx, projectID, status)
}

func (s *Service) Update(ctx context.Context, actorID, taskID uuid.UUID, titulo string, descripcion *string, assignedTo *uuid.UUID, dueDate *time.Time) (Task, error) {
	if strings.TrimSpace(titulo) == "" {
		return Task{}, apperr.Validation("titulo is required")
	}
	if _, err := s.Get(ctx, actorID, taskID); err != nil {
		return Task{}, err
	}
	return s.repo.Update(ctx, taskID, titulo, descripcion, assignedTo, dueDate)
}

// UpdateStatus moves a task between Kanban columns. Moving out of
// "completada" clears the completion timestamp.
func (s *Service) UpdateStatus(ctx context.Context, actorID, taskID uuid.UUID, status Status) (Task, error) {
	if !status.Valid() {
		return Task{}, apperr.Validation("invalid task status: " + string(status))
	}
	if _, err := s.Get(ctx, actorID, taskID); err != nil {
		return Task{}, err
	}

	var completedAt *time.Time
	if status == StatusCompletada {
		now := time.Now().UTC()
		completedAt = &now
	}
	return s.repo.UpdateStatus(ctx, taskID, status, completedAt)
}

// CompleteWithFeedback marks the task done and records what the user
// learned from it as an insight.
func (s *Service) CompleteWithFeedback(ctx context.Context, actorID, taskID uuid.UUID, feedback string) (Task, Insight, error) {
	if strings.TrimSpace(feedback) == "" {
		return Task{}, Insight{}, apperr.Validation("feedback is required")
	}
	if _, err := s.Get(ctx, actorID, taskID); err != nil {
		return Task{}, Insight{}, err
	}

	now := time.Now().UTC()
	task, err := s.repo.UpdateStatus(ctx, taskID, StatusCompletada, &now)
	if err != nil {
		return Task{}, Insight{}, err
	}

	insight, err := s.repo.InsertInsight(ctx, taskID, actorID, feedback)
	if err != nil {
		return Task{}, Insight{}, err
	}

	s.bus.Publish(ctx, events.TaskCompleted{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		UserID:    actorID,
		Titulo:    task.Titulo,
	})
	s.log.Info("task completed with feedback", "taskId", taskID)

	return task, insight, nil
}

func (s *Service) Delete(ctx context.Context, actorID, taskID uuid.UUID) error {
	if _, err := s.Get(ctx, actorID, taskID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, taskID)
}
