package kpis

import (
	"context"
	"testing"

	"novahub_backend/internal/events"
	"novahub_backend/platform/apperr"
	"novahub_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	kpis       map[uuid.UUID]KPI
	lastStatus string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{kpis: make(map[uuid.UUID]KPI)}
}

func (f *fakeRepo) Create(_ context.Context, p CreateParams) (KPI, error) {
	k := KPI{
		ID:        uuid.New(),
		ProjectID: p.ProjectID,
		Tipo:      p.Tipo,
		Valor:     p.Valor,
		Periodo:   p.Periodo,
		Evidencia: p.Evidencia,
		Status:    StatusPendiente,
		CreatedBy: p.CreatedBy,
	}
	f.kpis[k.ID] = k
	return k, nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (KPI, error) {
	k, ok := f.kpis[id]
	if !ok {
		return KPI{}, apperr.NotFound("kpi not found")
	}
	return k, nil
}

func (f *fakeRepo) List(_ context.Context, projectID uuid.UUID) ([]KPI, error) {
	var out []KPI
	for _, k := range f.kpis {
		if k.ProjectID == projectID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPending(_ context.Context, projectID uuid.UUID) ([]KPI, error) {
	var out []KPI
	for _, k := range f.kpis {
		if k.ProjectID == projectID && k.Status == StatusPendiente {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetValidationStatus(_ context.Context, id, validatedBy uuid.UUID, status string) (KPI, error) {
	k, ok := f.kpis[id]
	if !ok || k.Status != StatusPendiente {
		return KPI{}, apperr.Conflict("kpi is not pending validation")
	}
	k.Status = status
	k.ValidatedBy = &validatedBy
	f.kpis[id] = k
	f.lastStatus = status
	return k, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.kpis, id)
	return nil
}

type allowAllGuard struct{}

func (allowAllGuard) RequireMember(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func newTestService(repo Repo) *Service {
	log := logger.New("test")
	return NewService(repo, allowAllGuard{}, events.NewInMemoryBus(log), log)
}

func TestListPendingForValidation_ExcludesOwnSubmissions(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	owner := uuid.New()
	peer := uuid.New()
	projectID := uuid.New()

	for range 3 {
		if _, err := svc.Create(ctx, owner, Input{ProjectID: projectID, Tipo: "mrr", Valor: 1200, Periodo: "2026-08"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := svc.Create(ctx, peer, Input{ProjectID: projectID, Tipo: "churn", Valor: 2.5, Periodo: "2026-08"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	forOwner, err := svc.ListPendingForValidation(ctx, owner, projectID)
	if err != nil {
		t.Fatalf("ListPendingForValidation() error = %v", err)
	}
	if len(forOwner) != 1 {
		t.Fatalf("owner sees %d pending kpis, want 1", len(forOwner))
	}
	if forOwner[0].CreatedBy != peer {
		t.Errorf("owner sees own submission in pending list")
	}

	forPeer, err := svc.ListPendingForValidation(ctx, peer, projectID)
	if err != nil {
		t.Fatalf("ListPendingForValidation() error = %v", err)
	}
	if len(forPeer) != 3 {
		t.Fatalf("peer sees %d pending kpis, want 3", len(forPeer))
	}
}

func TestValidate_RejectsSelfValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	owner := uuid.New()
	kpi, err := svc.Create(ctx, owner, Input{ProjectID: uuid.New(), Tipo: "usuarios_activos", Valor: 540, Periodo: "2026-08"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Validate(ctx, owner, kpi.ID, true); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("self-validation error = %v, want forbidden", err)
	}
}

func TestValidate_PeerDecisionSetsStatus(t *testing.T) {
	tests := []struct {
		name       string
		approve    bool
		wantStatus string
	}{
		{"approval", true, StatusValidado},
		{"rejection", false, StatusRechazado},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := newTestService(repo)
			ctx := context.Background()

			kpi, err := svc.Create(ctx, uuid.New(), Input{ProjectID: uuid.New(), Tipo: "mrr", Valor: 990, Periodo: "2026-07"})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			resolved, err := svc.Validate(ctx, uuid.New(), kpi.ID, tt.approve)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if resolved.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", resolved.Status, tt.wantStatus)
			}
		})
	}
}

func TestValidate_ResolvedKPICannotBeRevalidated(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	kpi, err := svc.Create(ctx, uuid.New(), Input{ProjectID: uuid.New(), Tipo: "mrr", Valor: 100, Periodo: "2026-06"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Validate(ctx, uuid.New(), kpi.ID, true); err != nil {
		t.Fatalf("first Validate() error = %v", err)
	}

	if _, err := svc.Validate(ctx, uuid.New(), kpi.ID, false); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second Validate() error = %v, want conflict", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	actor := uuid.New()

	tests := []struct {
		name  string
		input Input
	}{
		{"missing tipo", Input{ProjectID: uuid.New(), Periodo: "2026-08", Valor: 10}},
		{"blank periodo", Input{ProjectID: uuid.New(), Tipo: "mrr", Periodo: "  ", Valor: 10}},
		{"negative valor", Input{ProjectID: uuid.New(), Tipo: "mrr", Periodo: "2026-08", Valor: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, actor, tt.input); !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("Create() error = %v, want validation", err)
			}
		})
	}
}
