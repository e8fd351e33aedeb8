package user

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type CreateInput struct {
	Name         string
	Email        string
	PasswordHash string
}

type Token struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	CreateToken(ctx context.Context, t Token) error
	// GetByToken resolves a non-expired token to its user.
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	DeleteToken(ctx context.Context, token string) error
}
