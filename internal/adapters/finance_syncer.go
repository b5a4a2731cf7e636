package adapters

import (
	"context"

	"novahub_backend/internal/finance"

	"github.com/google/uuid"
)

// FinanceSyncRunner lets the scheduler trigger a provider sync without
// caring about the sync result payload.
type FinanceSyncRunner struct {
	svc *finance.Service
}

func NewFinanceSyncRunner(svc *finance.Service) *FinanceSyncRunner {
	return &FinanceSyncRunner{svc: svc}
}

func (r *FinanceSyncRunner) SyncScheduled(ctx context.Context, projectID uuid.UUID) error {
	_, err := r.svc.SyncScheduled(ctx, projectID)
	return err
}
