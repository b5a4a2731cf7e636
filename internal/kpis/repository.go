package kpis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"novahub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate      = "kpis.repository.create"
	opGet         = "kpis.repository.get"
	opList        = "kpis.repository.list"
	opListPending = "kpis.repository.list_pending"
	opValidate    = "kpis.repository.validate"
	opDelete      = "kpis.repository.delete"
)

const kpiColumns = `
	id, project_id, tipo, valor, periodo, evidencia, status,
	created_by, validated_by, validated_at, created_at`

type KPI struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	Tipo        string     `json:"tipo"`
	Valor       float64    `json:"valor"`
	Periodo     string     `json:"periodo"`
	Evidencia   *string    `json:"evidencia,omitempty"`
	Status      string     `json:"status"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	ValidatedBy *uuid.UUID `json:"validatedBy,omitempty"`
	ValidatedAt *time.Time `json:"validatedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type CreateParams struct {
	ProjectID uuid.UUID
	Tipo      string
	Valor     float64
	Periodo   string
	Evidencia *string
	CreatedBy uuid.UUID
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (KPI, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO kpis (project_id, tipo, valor, periodo, evidencia, status, created_by)
		VALUES ($1, $2, $3, $4, $5, 'pendiente', $6)
		RETURNING`+kpiColumns,
		p.ProjectID, p.Tipo, p.Valor, p.Periodo, p.Evidencia, p.CreatedBy)
	kpi, err := scanKPI(row)
	if err != nil {
		return KPI{}, apperr.Internal(fmt.Sprintf("create kpi failed: %v", err)).WithOp(opCreate)
	}
	return kpi, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (KPI, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+kpiColumns+` FROM kpis WHERE id = $1`, id)
	kpi, err := scanKPI(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KPI{}, apperr.NotFound("kpi not found").WithOp(opGet)
		}
		return KPI{}, apperr.Internal(fmt.Sprintf("get kpi failed: %v", err)).WithOp(opGet)
	}
	return kpi, nil
}

func (r *Repository) List(ctx context.Context, projectID uuid.UUID) ([]KPI, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+kpiColumns+` FROM kpis
		WHERE project_id = $1
		ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list kpis failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()
	return collectKPIs(rows, opList)
}

// ListPending returns every pending KPI in the project. Owner exclusion
// is applied by the service.
func (r *Repository) ListPending(ctx context.Context, projectID uuid.UUID) ([]KPI, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+kpiColumns+` FROM kpis
		WHERE project_id = $1 AND status = 'pendiente'
		ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list pending kpis failed: %v", err)).WithOp(opListPending)
	}
	defer rows.Close()
	return collectKPIs(rows, opListPending)
}

// SetValidationStatus resolves a pending KPI.
func (r *Repository) SetValidationStatus(ctx context.Context, id, validatedBy uuid.UUID, status string) (KPI, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE kpis
		SET status = $3, validated_by = $2, validated_at = now()
		WHERE id = $1 AND status = 'pendiente'
		RETURNING`+kpiColumns, id, validatedBy, status)
	kpi, err := scanKPI(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return KPI{}, apperr.Conflict("kpi is not pending validation").WithOp(opValidate)
		}
		return KPI{}, apperr.Internal(fmt.Sprintf("validate kpi failed: %v", err)).WithOp(opValidate)
	}
	return kpi, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM kpis WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete kpi failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("kpi not found").WithOp(opDelete)
	}
	return nil
}

func scanKPI(row pgx.Row) (KPI, error) {
	var k KPI
	err := row.Scan(
		&k.ID, &k.ProjectID, &k.Tipo, &k.Valor, &k.Periodo, &k.Evidencia,
		&k.Status, &k.CreatedBy, &k.ValidatedBy, &k.ValidatedAt, &k.CreatedAt,
	)
	return k, err
}

func collectKPIs(rows pgx.Rows, op string) ([]KPI, error) {
	var out []KPI
	for rows.Next() {
		k, err := scanKPI(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan kpi failed: %v", err)).WithOp(op)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate kpis failed: %v", err)).WithOp(op)
	}
	return out, nil
}
