package projects

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
	opCreate      = "projects.repository.create"
	opGet         = "projects.repository.get"
	opListForUser = "projects.repository.list_for_user"
	opUpdate      = "projects.repository.update"
	opDelete      = "projects.repository.delete"
	opListIDs     = "projects.repository.list_all_ids"
	opAddMember   = "projects.repository.add_member"
	opListMembers = "projects.repository.list_members"
	opIsMember    = "projects.repository.is_member"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Member struct {
	UserID   uuid.UUID `json:"userId"`
	Nombre   string    `json:"nombre"`
	Email    string    `json:"email"`
	Rol      string    `json:"rol"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, nombre string, descripcion *string, createdBy uuid.UUID) (Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `
		INSERT INTO projects (nombre, descripcion, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, nombre, descripcion, created_by, created_at, updated_at
	`, nombre, descripcion, createdBy).Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Project{}, apperr.Internal(fmt.Sprintf("create project failed: %v", err)).WithOp(opCreate)
	}
	return p, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `
		SELECT id, nombre, descripcion, created_by, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, apperr.NotFound("project not found").WithOp(opGet)
		}
		return Project{}, apperr.Internal(fmt.Sprintf("get project failed: %v", err)).WithOp(opGet)
	}
	return p, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.nombre, p.descripcion, p.created_by, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list projects failed: %v", err)).WithOp(opListForUser)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan project failed: %v", err)).WithOp(opListForUser)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, nombre string, descripcion *string) (Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `
		UPDATE projects SET nombre = $2, descripcion = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, nombre, descripcion, created_by, created_at, updated_at
	`, id, nombre, descripcion).Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, apperr.NotFound("project not found").WithOp(opUpdate)
		}
		return Project{}, apperr.Internal(fmt.Sprintf("update project failed: %v", err)).WithOp(opUpdate)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete project failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("project not found").WithOp(opDelete)
	}
	return nil
}

func (r *Repository) AddMember(ctx context.Context, projectID, userID uuid.UUID, rol string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, rol)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO UPDATE SET rol = EXCLUDED.rol
	`, projectID, userID, rol)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperr.Validation("invalid projectId or userId").WithOp(opAddMember)
		}
		return apperr.Internal(fmt.Sprintf("add project member failed: %v", err)).WithOp(opAddMember)
	}
	return nil
}

func (r *Repository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pm.user_id, u.nombre, u.email, pm.rol, pm.joined_at
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at
	`, projectID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list members failed: %v", err)).WithOp(opListMembers)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Nombre, &m.Email, &m.Rol, &m.JoinedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan member failed: %v", err)).WithOp(opListMembers)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListAllIDs returns the id of every project. Used by background jobs
// that run per project.
func (r *Repository) ListAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list project ids failed: %v", err)).WithOp(opListIDs)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan project id failed: %v", err)).WithOp(opListIDs)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)
	`, projectID, userID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("membership check failed: %v", err)).WithOp(opIsMember)
	}
	return exists, nil
}
