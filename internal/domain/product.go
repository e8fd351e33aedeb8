package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              int64           `json:"id"`
	CategoryID      *int64          `json:"-"`
	CategoryName    string          `json:"category,omitempty"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description,omitempty"`
	Image           string          `json:"image,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	CashbackPercent decimal.Decimal `json:"cashback_percent"`
	PromoLabel      *string         `json:"promo_label,omitempty"`
	PromoExpiresAt  *time.Time      `json:"promo_expires_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// FinalPrice is the unit price after the product discount.
func (p Product) FinalPrice() decimal.Decimal {
	discounted := p.Price.Sub(p.Price.Mul(p.DiscountPercent).Div(decimal.NewFromInt(100)))
	if discounted.IsNegative() {
		return decimal.Zero
	}
	return discounted
}

// PromoActive reports whether the product carries a live promo label.
func (p Product) PromoActive(now time.Time) bool {
	if p.PromoLabel == nil {
		return false
	}
	return p.PromoExpiresAt == nil || p.PromoExpiresAt.After(now)
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
