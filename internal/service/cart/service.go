package cart

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

const (
	maxLines    = 50
	maxQuantity = 25
)

type Service struct {
	repo cartrepo.Repository
}

func New(repo cartrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	lines, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Save replaces the user's saved cart. Duplicate product lines collapse to
// the last occurrence, matching how the original session cart behaved.
func (s *Service) Save(ctx context.Context, userID int64, lines []domain.CartLine) ([]domain.CartLine, error) {
	if len(lines) > maxLines {
		return nil, fmt.Errorf("at most %d cart lines allowed", maxLines)
	}
	deduped := make([]domain.CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, fmt.Errorf("product_id must be positive")
		}
		if line.Quantity < 1 || line.Quantity > maxQuantity {
			return nil, fmt.Errorf("quantity must be between 1 and %d", maxQuantity)
		}
		if i, ok := index[line.ProductID]; ok {
			deduped[i].Quantity = line.Quantity
			continue
		}
		index[line.ProductID] = len(deduped)
		deduped = append(deduped, line)
	}

	if err := s.repo.Replace(ctx, userID, deduped); err != nil {
		return nil, err
	}
	return deduped, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}
