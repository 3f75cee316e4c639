package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios y sus perfiles.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	SaveProfile(ctx context.Context, profile *entity.UserProfile) error
}
