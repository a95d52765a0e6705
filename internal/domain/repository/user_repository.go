package repository

import (
	"context"

	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// UserRepository puerto de lectura de usuarios del tenant.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
