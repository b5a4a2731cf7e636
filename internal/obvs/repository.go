package obvs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"novahub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate           = "obvs.repository.create"
	opGet              = "obvs.repository.get"
	opList             = "obvs.repository.list"
	opDelete           = "obvs.repository.delete"
	opValidate         = "obvs.repository.validate"
	opAttachEvidence   = "obvs.repository.attach_evidence"
	opListParticipants = "obvs.repository.list_participants"
)

const obvColumns = `
	id, project_id, titulo, descripcion, cantidad, precio_unitario, costes,
	facturacion, margen, margen_porcentual, status, evidence_key,
	evidence_taken_at, validated_by, validated_at, created_by, created_at`

type OBV struct {
	ID               uuid.UUID  `json:"id"`
	ProjectID        uuid.UUID  `json:"projectId"`
	Titulo           string     `json:"titulo"`
	Descripcion      *string    `json:"descripcion,omitempty"`
	Cantidad         float64    `json:"cantidad"`
	PrecioUnitario   float64    `json:"precioUnitario"`
	Costes           float64    `json:"costes"`
	Facturacion      float64    `json:"facturacion"`
	Margen           float64    `json:"margen"`
	MargenPorcentual float64    `json:"margenPorcentual"`
	Status           string     `json:"status"`
	EvidenceKey      *string    `json:"evidenceKey,omitempty"`
	EvidenceTakenAt  *time.Time `json:"evidenceTakenAt,omitempty"`
	ValidatedBy      *uuid.UUID `json:"validatedBy,omitempty"`
	ValidatedAt      *time.Time `json:"validatedAt,omitempty"`
	CreatedBy        uuid.UUID  `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type Participant struct {
	UserID     uuid.UUID `json:"userId"`
	Porcentaje float64   `json:"porcentaje"`
}

type CreateParams struct {
	ProjectID        uuid.UUID
	Titulo           string
	Descripcion      *string
	Cantidad         float64
	PrecioUnitario   float64
	Costes           float64
	Facturacion      float64
	Margen           float64
	MargenPorcentual float64
	CreatedBy        uuid.UUID
	Participants     []Participant
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the OBV and its participant shares in one transaction.
func (r *Repository) Create(ctx context.Context, p CreateParams) (OBV, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return OBV{}, apperr.Internal(fmt.Sprintf("begin tx failed: %v", err)).WithOp(opCreate)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO obvs
			(project_id, titulo, descripcion, cantidad, precio_unitario, costes,
			 facturacion, margen, margen_porcentual, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING`+obvColumns,
		p.ProjectID, p.Titulo, p.Descripcion, p.Cantidad, p.PrecioUnitario, p.Costes,
		p.Facturacion, p.Margen, p.MargenPorcentual, p.CreatedBy,
	)
	obv, err := scanOBV(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return OBV{}, apperr.Validation("invalid projectId").WithOp(opCreate)
		}
		return OBV{}, apperr.Internal(fmt.Sprintf("create obv failed: %v", err)).WithOp(opCreate)
	}

	for _, part := range p.Participants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO obv_participants (obv_id, user_id, porcentaje)
			VALUES ($1, $2, $3)
		`, obv.ID, part.UserID, part.Porcentaje); err != nil {
			return OBV{}, apperr.Internal(fmt.Sprintf("insert participant failed: %v", err)).WithOp(opCreate)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return OBV{}, apperr.Internal(fmt.Sprintf("commit failed: %v", err)).WithOp(opCreate)
	}
	return obv, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (OBV, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+obvColumns+` FROM obvs WHERE id = $1`, id)
	obv, err := scanOBV(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OBV{}, apperr.NotFound("obv not found").WithOp(opGet)
		}
		return OBV{}, apperr.Internal(fmt.Sprintf("get obv failed: %v", err)).WithOp(opGet)
	}
	return obv, nil
}

func (r *Repository) List(ctx context.Context, projectID uuid.UUID) ([]OBV, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+obvColumns+` FROM obvs WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list obvs failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var out []OBV
	for rows.Next() {
		obv, err := scanOBV(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan obv failed: %v", err)).WithOp(opList)
		}
		out = append(out, obv)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM obvs WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete obv failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("obv not found").WithOp(opDelete)
	}
	return nil
}

// SetValidationStatus records the outcome of a peer validation. Only
// pending OBVs transition.
func (r *Repository) SetValidationStatus(ctx context.Context, id, validatedBy uuid.UUID, status string) (OBV, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE obvs
		SET status = $3, validated_by = $2, validated_at = now()
		WHERE id = $1 AND status = 'pendiente'
		RETURNING`+obvColumns, id, validatedBy, status)
	obv, err := scanOBV(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OBV{}, apperr.Conflict("obv is not pending validation").WithOp(opValidate)
		}
		return OBV{}, apperr.Internal(fmt.Sprintf("validate obv failed: %v", err)).WithOp(opValidate)
	}
	return obv, nil
}

func (r *Repository) AttachEvidence(ctx context.Context, id uuid.UUID, objectKey string, takenAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE obvs SET evidence_key = $2, evidence_taken_at = $3 WHERE id = $1
	`, id, objectKey, takenAt)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("attach evidence failed: %v", err)).WithOp(opAttachEvidence)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("obv not found").WithOp(opAttachEvidence)
	}
	return nil
}

func (r *Repository) ListParticipants(ctx context.Context, obvID uuid.UUID) ([]Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, porcentaje FROM obv_participants WHERE obv_id = $1
	`, obvID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list participants failed: %v", err)).WithOp(opListParticipants)
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.UserID, &p.Porcentaje); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan participant failed: %v", err)).WithOp(opListParticipants)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanOBV(row pgx.Row) (OBV, error) {
	var o OBV
	err := row.Scan(
		&o.ID, &o.ProjectID, &o.Titulo, &o.Descripcion, &o.Cantidad, &o.PrecioUnitario,
		&o.Costes, &o.Facturacion, &o.Margen, &o.MargenPorcentual, &o.Status,
		&o.EvidenceKey, &o.EvidenceTakenAt, &o.ValidatedBy, &o.ValidatedAt,
		&o.CreatedBy, &o.CreatedAt,
	)
	return o, err
}
