package favorite

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	favoriterepo "storefront/internal/repository/favorite"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo     favoriterepo.Repository
	products productrepo.Repository
}

func New(repo favoriterepo.Repository, products productrepo.Repository) *Service {
	return &Service{repo: repo, products: products}
}

// View is a favorited product with its storefront pricing projection.
type View struct {
	domain.Product
	FinalPrice     decimal.Decimal `json:"final_price"`
	CashbackAmount decimal.Decimal `json:"cashback_amount"`
	PromoActive    bool            `json:"promo_active"`
	FavoritedAt    time.Time       `json:"favorited_at"`
}

func (s *Service) List(ctx context.Context, userID int64) ([]View, error) {
	favorites, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(favorites))
	now := time.Now()
	for _, f := range favorites {
		if f.Product == nil {
			continue
		}
		p := *f.Product
		final := p.FinalPrice()
		views = append(views, View{
			Product:        p,
			FinalPrice:     final.Round(2),
			CashbackAmount: final.Mul(p.CashbackPercent).Div(decimal.NewFromInt(100)).Round(2),
			PromoActive:    p.PromoActive(now),
			FavoritedAt:    f.CreatedAt,
		})
	}
	return views, nil
}

// Add favorites a product; favoriting twice is a no-op. The product must
// exist.
func (s *Service) Add(ctx context.Context, userID, productID int64) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	return s.repo.Remove(ctx, userID, productID)
}
