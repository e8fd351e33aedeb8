package wallet

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Repository is the read surface of the wallet ledger.
type Repository interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	RecentTransactions(ctx context.Context, userID int64, limit int) ([]domain.WalletTransaction, error)
}

// Ledger mutates a user's wallet inside a caller-owned transaction. Every
// mutation locks the user row, updates the cached balance and appends the
// transaction record as one unit; callers must commit or roll back both.
type Ledger interface {
	// DebitTx subtracts amount from the user's balance. Returns
	// domain.ErrInsufficientBalance when the locked balance cannot cover it.
	DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, purchaseID int64, description string) (decimal.Decimal, error)
	// CreditTx adds amount to the user's balance. No upper bound.
	CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, purchaseID int64, description string) (decimal.Decimal, error)
	// HasCashbackCreditTx reports whether a cashback transaction already
	// references the purchase. Guards webhook retries against double credit.
	HasCashbackCreditTx(ctx context.Context, tx pgx.Tx, purchaseID int64) (bool, error)
}
