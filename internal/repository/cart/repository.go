package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores a user's saved cart. Replace swaps the whole cart in one
// transaction so concurrent saves never interleave lines.
type Repository interface {
	Get(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Replace(ctx context.Context, userID int64, lines []domain.CartLine) error
	Clear(ctx context.Context, userID int64) error
}
