package ticket

import (
	"context"

	"storefront/internal/domain"
)

type CreateInput struct {
	UserID   int64
	Subject  string
	Message  string
	Priority string
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.SupportTicket, error)
	ListByUser(ctx context.Context, userID int64, status string, page, perPage int) ([]domain.SupportTicket, int, error)
}
