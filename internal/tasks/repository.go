package tasks

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
	opCreate        = "tasks.repository.create"
	opGet           = "tasks.repository.get"
	opList          = "tasks.repository.list"
	opUpdate        = "tasks.repository.update"
	opUpdateStatus  = "tasks.repository.update_status"
	opDelete        = "tasks.repository.delete"
	opInsertInsight = "tasks.repository.insert_insight"
)

const taskColumns = `
	id, project_id, titulo, descripcion, status, assigned_to, due_date,
	created_by, completed_at, created_at, updated_at`

type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	Titulo      string     `json:"titulo"`
	Descripcion *string    `json:"descripcion,omitempty"`
	Status      Status     `json:"status"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Insight struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	UserID    uuid.UUID `json:"userId"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateParams struct {
	ProjectID   uuid.UUID
	Titulo      string
	Descripcion *string
	AssignedTo  *uuid.UUID
	DueDate     *time.Time
	CreatedBy   uuid.UUID
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, titulo, descripcion, assigned_to, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING`+taskColumns,
		p.ProjectID, p.Titulo, p.Descripcion, p.AssignedTo, p.DueDate, p.CreatedBy,
	)
	task, err := scanTask(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Task{}, apperr.Validation("invalid projectId or assignedTo").WithOp(opCreate)
		}
		return Task{}, apperr.Internal(fmt.Sprintf("create task failed: %v", err)).WithOp(opCreate)
	}
	return task, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound("task not found").WithOp(opGet)
		}
		return Task{}, apperr.Internal(fmt.Sprintf("get task failed: %v", err)).WithOp(opGet)
	}
	return task, nil
}

func (r *Repository) List(ctx context.Context, projectID uuid.UUID, status Status) ([]Task, error) {
	query := `SELECT` + taskColumns + ` FROM tasks WHERE project_id = $1`
	args := []any{projectID}
	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list tasks failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan task failed: %v", err)).WithOp(opList)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, titulo string, descripcion *string, assignedTo *uuid.UUID, dueDate *time.Time) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET titulo = $2, descripcion = $3, assigned_to = $4, due_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING`+taskColumns, id, titulo, descripcion, assignedTo, dueDate)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound("task not found").WithOp(opUpdate)
		}
		return Task{}, apperr.Internal(fmt.Sprintf("update task failed: %v", err)).WithOp(opUpdate)
	}
	return task, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, completedAt *time.Time) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks SET status = $2, completed_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING`+taskColumns, id, status, completedAt)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound("task not found").WithOp(opUpdateStatus)
		}
		return Task{}, apperr.Internal(fmt.Sprintf("update task status failed: %v", err)).WithOp(opUpdateStatus)
	}
	return task, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete task failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task not found").WithOp(opDelete)
	}
	return nil
}

func (r *Repository) InsertInsight(ctx context.Context, taskID, userID uuid.UUID, feedback string) (Insight, error) {
	var ins Insight
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_insights (task_id, user_id, feedback)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, user_id, feedback, created_at
	`, taskID, userID, feedback).Scan(&ins.ID, &ins.TaskID, &ins.UserID, &ins.Feedback, &ins.CreatedAt)
	if err != nil {
		return Insight{}, apperr.Internal(fmt.Sprintf("insert insight failed: %v", err)).WithOp(opInsertInsight)
	}
	return ins, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Titulo, &t.Descripcion, &t.Status, &t.AssignedTo,
		&t.DueDate, &t.CreatedBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
