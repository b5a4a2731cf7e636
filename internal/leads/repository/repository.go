package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"novahub_backend/internal/leads/domain"
	"novahub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate          = "leads.repository.create"
	opGet             = "leads.repository.get"
	opList            = "leads.repository.list"
	opUpdate          = "leads.repository.update"
	opDelete          = "leads.repository.delete"
	opUpdateEtapa     = "leads.repository.update_etapa"
	opWriteScore      = "leads.repository.write_score"
	opInsertHistory   = "leads.repository.insert_history"
	opListHistory     = "leads.repository.list_history"
	opListOpenLeadIDs = "leads.repository.list_open_lead_ids"
)

const leadColumns = `
	id, project_id, nombre, empresa, email, telefono, etapa,
	valor_potencial, engagement, last_contact_date, notas, metadata,
	owner_id, created_by, created_at, updated_at`

type Lead struct {
	ID              uuid.UUID      `json:"id"`
	ProjectID       uuid.UUID      `json:"projectId"`
	Nombre          string         `json:"nombre"`
	Empresa         *string        `json:"empresa,omitempty"`
	Email           *string        `json:"email,omitempty"`
	Telefono        *string        `json:"telefono,omitempty"`
	Etapa           domain.Etapa   `json:"etapa"`
	ValorPotencial  float64        `json:"valorPotencial"`
	Engagement      *int           `json:"engagement,omitempty"`
	LastContactDate *time.Time     `json:"lastContactDate,omitempty"`
	Notas           *string        `json:"notas,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	OwnerID         *uuid.UUID     `json:"ownerId,omitempty"`
	CreatedBy       uuid.UUID      `json:"createdBy"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type StatusChange struct {
	ID        uuid.UUID    `json:"id"`
	LeadID    uuid.UUID    `json:"leadId"`
	FromEtapa domain.Etapa `json:"fromEtapa"`
	ToEtapa   domain.Etapa `json:"toEtapa"`
	ChangedBy uuid.UUID    `json:"changedBy"`
	ChangedAt time.Time    `json:"changedAt"`
}

type CreateParams struct {
	ProjectID       uuid.UUID
	Nombre          string
	Empresa         *string
	Email           *string
	Telefono        *string
	Etapa           domain.Etapa
	ValorPotencial  float64
	Engagement      *int
	LastContactDate *time.Time
	Notas           *string
	OwnerID         *uuid.UUID
	CreatedBy       uuid.UUID
}

type UpdateParams struct {
	Nombre          string
	Empresa         *string
	Email           *string
	Telefono        *string
	ValorPotencial  float64
	Engagement      *int
	LastContactDate *time.Time
	Notas           *string
	OwnerID         *uuid.UUID
}

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	Etapa  domain.Etapa
	Search string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads
			(project_id, nombre, empresa, email, telefono, etapa,
			 valor_potencial, engagement, last_contact_date, notas, owner_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING`+leadColumns,
		p.ProjectID, p.Nombre, p.Empresa, p.Email, p.Telefono, p.Etapa,
		p.ValorPotencial, p.Engagement, p.LastContactDate, p.Notas, p.OwnerID, p.CreatedBy,
	)
	lead, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Lead{}, apperr.Validation("invalid projectId or ownerId").WithOp(opCreate)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("create lead failed: %v", err)).WithOp(opCreate)
	}
	return lead, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opGet)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("get lead failed: %v", err)).WithOp(opGet)
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context, projectID uuid.UUID, f ListFilter) ([]Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE project_id = $1`
	args := []any{projectID}
	if f.Etapa != "" {
		args = append(args, f.Etapa)
		query += fmt.Sprintf(" AND etapa = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" AND (nombre ILIKE $%d OR empresa ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list leads failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan lead failed: %v", err)).WithOp(opList)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			nombre = $2, empresa = $3, email = $4, telefono = $5,
			valor_potencial = $6, engagement = $7, last_contact_date = $8,
			notas = $9, owner_id = $10, updated_at = now()
		WHERE id = $1
		RETURNING`+leadColumns,
		id, p.Nombre, p.Empresa, p.Email, p.Telefono,
		p.ValorPotencial, p.Engagement, p.LastContactDate, p.Notas, p.OwnerID,
	)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opUpdate)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("update lead failed: %v", err)).WithOp(opUpdate)
	}
	return lead, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete lead failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found").WithOp(opDelete)
	}
	return nil
}

func (r *Repository) UpdateEtapa(ctx context.Context, id uuid.UUID, etapa domain.Etapa) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET etapa = $2, updated_at = now()
		WHERE id = $1
		RETURNING`+leadColumns, id, etapa)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opUpdateEtapa)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("update lead stage failed: %v", err)).WithOp(opUpdateEtapa)
	}
	return lead, nil
}

// WriteScore merges the scoring result into the lead's metadata document.
// The merge is last-write-wins; concurrent scorings of the same lead simply
// overwrite each other's keys.
func (r *Repository) WriteScore(ctx context.Context, id uuid.UUID, score int, classification domain.Classification, scoredAt time.Time) error {
	patch, err := json.Marshal(map[string]any{
		"auto_score":     score,
		"classification": classification,
		"last_scored_at": scoredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return apperr.Internal(fmt.Sprintf("marshal score patch failed: %v", err)).WithOp(opWriteScore)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb, updated_at = now()
		WHERE id = $1
	`, id, patch)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("write lead score failed: %v", err)).WithOp(opWriteScore)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found").WithOp(opWriteScore)
	}
	return nil
}

func (r *Repository) InsertStatusChange(ctx context.Context, leadID uuid.UUID, from, to domain.Etapa, changedBy uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_status_history (lead_id, from_etapa, to_etapa, changed_by)
		VALUES ($1, $2, $3, $4)
	`, leadID, from, to, changedBy)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("insert status change failed: %v", err)).WithOp(opInsertHistory)
	}
	return nil
}

func (r *Repository) ListStatusHistory(ctx context.Context, leadID uuid.UUID) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, from_etapa, to_etapa, changed_by, changed_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY changed_at DESC
	`, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list status history failed: %v", err)).WithOp(opListHistory)
	}
	defer rows.Close()

	var history []StatusChange
	for rows.Next() {
		var h StatusChange
		if err := rows.Scan(&h.ID, &h.LeadID, &h.FromEtapa, &h.ToEtapa, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan status change failed: %v", err)).WithOp(opListHistory)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ListOpenLeadIDs returns the IDs of every lead still in an open pipeline
// stage, for the periodic rescore task.
func (r *Repository) ListOpenLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM leads WHERE etapa NOT IN ('ganado', 'perdido')
	`)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list open leads failed: %v", err)).WithOp(opListOpenLeadIDs)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan lead id failed: %v", err)).WithOp(opListOpenLeadIDs)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.ProjectID, &l.Nombre, &l.Empresa, &l.Email, &l.Telefono, &l.Etapa,
		&l.ValorPotencial, &l.Engagement, &l.LastContactDate, &l.Notas, &l.Metadata,
		&l.OwnerID, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}
