package review

import (
	"context"
	"errors"

	"storefront/internal/domain"
	reviewrepo "storefront/internal/repository/review"
)

// ErrNotPurchased gates reviews: only buyers of a product may review it.
var ErrNotPurchased = errors.New("you can only review products you have purchased")

const (
	defaultPerPage = 10
	maxPerPage     = 20
)

type reviewRepo interface {
	Create(ctx context.Context, in reviewrepo.CreateInput) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64, page, perPage int) ([]domain.Review, int, error)
}

type purchaseChecker interface {
	HasPurchasedProduct(ctx context.Context, userID, productID int64) (bool, error)
}

type productGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	reviews   reviewRepo
	purchases purchaseChecker
	products  productGetter
}

func New(reviews reviewRepo, purchases purchaseChecker, products productGetter) *Service {
	return &Service{reviews: reviews, purchases: purchases, products: products}
}

type CreateInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,max=500"`
}

func (s *Service) Create(ctx context.Context, user domain.User, productID int64, in CreateInput) (*domain.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	purchased, err := s.purchases.HasPurchasedProduct(ctx, user.ID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, ErrNotPurchased
	}
	return s.reviews.Create(ctx, reviewrepo.CreateInput{
		ProductID: productID,
		UserID:    user.ID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	})
}

type Page struct {
	Reviews []domain.Review `json:"reviews"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
}

func (s *Service) ListByProduct(ctx context.Context, productID int64, page, perPage int) (*Page, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, page, perPage)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &Page{Reviews: reviews, Page: page, PerPage: perPage, Total: total}, nil
}
