package repository

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
	opCreateUser          = "auth.repository.create_user"
	opGetUserByEmail      = "auth.repository.get_user_by_email"
	opGetUserByID         = "auth.repository.get_user_by_id"
	opListUsers           = "auth.repository.list_users"
	opSetUserRoles        = "auth.repository.set_user_roles"
	opCreateRefreshToken  = "auth.repository.create_refresh_token"
	opGetRefreshToken     = "auth.repository.get_refresh_token"
	opRevokeRefreshToken  = "auth.repository.revoke_refresh_token"
	opRevokeAllForUser    = "auth.repository.revoke_all_refresh_tokens"
	opDeleteExpiredTokens = "auth.repository.delete_expired_refresh_tokens"
)

type User struct {
	ID           uuid.UUID
	Nombre       string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateUser(ctx context.Context, nombre, email, passwordHash string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (nombre, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, nombre, email, password_hash, roles, created_at, updated_at
	`, nombre, email, passwordHash).Scan(
		&u.ID, &u.Nombre, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, apperr.Conflict("email already registered").WithOp(opCreateUser)
		}
		return User{}, apperr.Internal(fmt.Sprintf("create user failed: %v", err)).WithOp(opCreateUser)
	}
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, nombre, email, password_hash, roles, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Nombre, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found").WithOp(opGetUserByEmail)
		}
		return User{}, apperr.Internal(fmt.Sprintf("get user failed: %v", err)).WithOp(opGetUserByEmail)
	}
	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, nombre, email, password_hash, roles, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Nombre, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound("user not found").WithOp(opGetUserByID)
		}
		return User{}, apperr.Internal(fmt.Sprintf("get user failed: %v", err)).WithOp(opGetUserByID)
	}
	return u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, nombre, email, password_hash, roles, created_at, updated_at
		FROM users ORDER BY nombre
	`)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list users failed: %v", err)).WithOp(opListUsers)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Nombre, &u.Email, &u.PasswordHash, &u.Roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan user failed: %v", err)).WithOp(opListUsers)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET roles = $2, updated_at = now() WHERE id = $1`, userID, roles)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("set user roles failed: %v", err)).WithOp(opSetUserRoles)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found").WithOp(opSetUserRoles)
	}
	return nil
}

func (r *Repository) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("create refresh token failed: %v", err)).WithOp(opCreateRefreshToken)
	}
	return nil
}

func (r *Repository) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, expires_at FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, apperr.Unauthorized("refresh token not found").WithOp(opGetRefreshToken)
		}
		return uuid.Nil, time.Time{}, apperr.Internal(fmt.Sprintf("get refresh token failed: %v", err)).WithOp(opGetRefreshToken)
	}
	return userID, expiresAt, nil
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("revoke refresh token failed: %v", err)).WithOp(opRevokeRefreshToken)
	}
	return nil
}

func (r *Repository) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("revoke refresh tokens failed: %v", err)).WithOp(opRevokeAllForUser)
	}
	return nil
}

// DeleteExpiredTokens prunes refresh tokens past their expiry. Called from
// the maintenance task in the scheduler worker.
func (r *Repository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("delete expired tokens failed: %v", err)).WithOp(opDeleteExpiredTokens)
	}
	return tag.RowsAffected(), nil
}
