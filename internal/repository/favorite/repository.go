package favorite

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// List returns favorites with their product loaded, newest first.
	// Favorites whose product was deleted are omitted.
	List(ctx context.Context, userID int64) ([]domain.Favorite, error)
	// Add is idempotent: favoriting an already-favorited product is a no-op.
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
}
