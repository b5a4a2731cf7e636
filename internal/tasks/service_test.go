package tasks

import (
	"context"
	"testing"

	"novahub_backend/internal/events"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

type allowAllGuard struct{}

func (allowAllGuard) RequireMember(ctx context.Context, projectID, userID uuid.UUID) error {
	return nil
}

func newValidationService() *Service {
	log := logger.New("development")
	return NewService(NewRepository(nil), allowAllGuard{}, events.NewInMemoryBus(log), log)
}

func TestCreate_RequiresTituloAndProject(t *testing.T) {
	svc := newValidationService()
	actor := uuid.New()

	_, err := svc.Create(context.Background(), actor, CreateParams{
		ProjectID: uuid.New(),
		Titulo:    "   ",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank titulo: got %v, want validation error", err)
	}

	_, err = svc.Create(context.Background(), actor, CreateParams{
		Titulo: "Llamar al cliente",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("missing projectId: got %v, want validation error", err)
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newValidationService()

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), Status("archivada"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown status: got %v, want validation error", err)
	}
}

func TestList_RejectsUnknownStatusFilter(t *testing.T) {
	svc := newValidationService()

	_, err := svc.List(context.Background(), uuid.New(), uuid.New(), Status("hecha"))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("unknown status filter: got %v, want validation error", err)
	}
}

func TestCompleteWithFeedback_RequiresFeedback(t *testing.T) {
	svc := newValidationService()

	_, _, err := svc.CompleteWithFeedback(context.Background(), uuid.New(), uuid.New(), "  ")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank feedback: got %v, want validation error", err)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPendiente, StatusEnProgreso, StatusCompletada} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("done").Valid() {
		t.Error("foreign status should not be valid")
	}
}
