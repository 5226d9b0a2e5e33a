package port

import (
	"context"
	"time"

	"github.com/Vinoddhakad18/go-architecture/internal/core/domain"
)

// UserFilter scopes user listings.
type UserFilter struct {
	Page  int
	Limit int
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}
