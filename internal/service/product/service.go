package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// View is a catalog product with the derived storefront fields.
type View struct {
	domain.Product
	FinalPrice     decimal.Decimal `json:"final_price"`
	CashbackAmount decimal.Decimal `json:"cashback_amount"`
	PromoActive    bool            `json:"promo_active"`
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := toView(*p)
	return &v, nil
}

func toView(p domain.Product) View {
	final := p.FinalPrice()
	return View{
		Product:        p,
		FinalPrice:     final.Round(2),
		CashbackAmount: final.Mul(p.CashbackPercent).Div(decimal.NewFromInt(100)).Round(2),
		PromoActive:    p.PromoActive(time.Now()),
	}
}
