package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// CreateInput carries the priced cart for persistence. Totals are already
// rounded; items are immutable snapshots.
type CreateInput struct {
	UserID        int64
	Currency      string
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	AmountDue     decimal.Decimal
	CashbackTotal decimal.Decimal
	Items         []domain.PurchaseItem
}

// WalletReceipt is the result of a wallet-paid checkout: the completed
// purchase plus the balance after debit and cashback credit.
type WalletReceipt struct {
	Purchase      *domain.Purchase
	WalletBalance decimal.Decimal
}

// SettleResult reports what a settlement attempt actually did. Settled is
// false when the purchase was not pending, which duplicate confirmations
// treat as success.
type SettleResult struct {
	Purchase         *domain.Purchase
	Settled          bool
	CashbackCredited bool
}

// Filter narrows purchase-history queries.
type Filter struct {
	Status    string
	Reference string
	From      *time.Time
	To        *time.Time
	MinTotal  *decimal.Decimal
	MaxTotal  *decimal.Decimal
}

type Repository interface {
	// CreatePending persists a pending purchase with its items in one
	// transaction. The payment reference is generated here and never
	// regenerated for the lifetime of the purchase.
	CreatePending(ctx context.Context, in CreateInput) (*domain.Purchase, error)
	// CreateWalletPaid persists a completed purchase and settles it against
	// the wallet (debit plus optional cashback credit) in one transaction.
	CreateWalletPaid(ctx context.Context, in CreateInput) (*WalletReceipt, error)
	// Settle transitions a pending purchase to completed under a row lock and
	// credits cashback at most once. Not-pending purchases are a no-op.
	Settle(ctx context.Context, purchaseID int64) (*SettleResult, error)
	GetByID(ctx context.Context, id int64) (*domain.Purchase, error)
	ListByUser(ctx context.Context, userID int64, f Filter, page, perPage int) ([]domain.Purchase, int, error)
	// ListForExport returns up to limit filtered purchases with items, newest
	// first, for CSV/print exports.
	ListForExport(ctx context.Context, userID int64, f Filter, limit int) ([]domain.Purchase, error)
	// HasPurchasedProduct reports whether the user has a completed or paid
	// purchase containing the product. Gates product reviews.
	HasPurchasedProduct(ctx context.Context, userID, productID int64) (bool, error)
}
