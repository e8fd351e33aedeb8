package review

import (
	"context"

	"storefront/internal/domain"
)

type CreateInput struct {
	ProductID int64
	UserID    int64
	Rating    int
	Comment   string
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64, page, perPage int) ([]domain.Review, int, error)
}
