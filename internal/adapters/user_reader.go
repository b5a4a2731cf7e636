package adapters

import (
	"context"

	"novahub_backend/internal/auth/repository"

	"github.com/google/uuid"
)

// UserNameReader resolves user display names for pitch signatures.
type UserNameReader struct {
	repo *repository.Repository
}

func NewUserNameReader(repo *repository.Repository) *UserNameReader {
	return &UserNameReader{repo: repo}
}

func (r *UserNameReader) GetUserName(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := r.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Nombre, nil
}
