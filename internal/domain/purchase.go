package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase statuses. A purchase is created pending (card path) or completed
// (wallet path) and transitions to completed exactly once; it never reverts.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusPaid      = "paid"
	PurchaseStatusFailed    = "failed"
)

type Purchase struct {
	ID               int64           `json:"id"`
	UserID           *int64          `json:"-"`
	PaymentReference string          `json:"payment_reference"`
	Currency         string          `json:"currency"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountTotal    decimal.Decimal `json:"discount_total"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	CashbackTotal    decimal.Decimal `json:"cashback_total"`
	Status           string          `json:"status"`
	PurchasedAt      *time.Time      `json:"purchased_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Items            []PurchaseItem  `json:"items,omitempty"`
}

// PurchaseItem is a denormalized snapshot of the product taken at checkout
// time; later catalog edits never alter it.
type PurchaseItem struct {
	ID             int64           `json:"id"`
	PurchaseID     int64           `json:"-"`
	ProductID      *int64          `json:"product_id,omitempty"`
	Name           string          `json:"name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CashbackAmount decimal.Decimal `json:"cashback_amount"`
}
