package wallet

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a wallet repository that is both the read surface and
// the tx-scoped ledger.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) *Postgres {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Postgres{pool: pool, logger: logger}
}

var _ Repository = (*Postgres)(nil)
var _ Ledger = (*Postgres)(nil)

func (r *Postgres) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *Postgres) RecentTransactions(ctx context.Context, userID int64, limit int) ([]domain.WalletTransaction, error) {
	const q = `
SELECT id, user_id, purchase_id, type, amount, balance_after, description, created_at
FROM wallet_transactions
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WalletTransaction
	for rows.Next() {
		var tx domain.WalletTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.PurchaseID, &tx.Type, &tx.Amount, &tx.BalanceAfter, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func (r *Postgres) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, purchaseID int64, description string) (decimal.Decimal, error) {
	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(balance) {
		r.logger.Printf("wallet repo: debit user_id=%d amount=%s balance=%s insufficient", userID, amount, balance)
		return decimal.Zero, domain.ErrInsufficientBalance
	}
	return r.apply(ctx, tx, userID, purchaseID, domain.WalletTxDebit, amount, balance.Sub(amount), description)
}

func (r *Postgres) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, purchaseID int64, description string) (decimal.Decimal, error) {
	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return r.apply(ctx, tx, userID, purchaseID, domain.WalletTxCashback, amount, balance.Add(amount), description)
}

func (r *Postgres) HasCashbackCreditTx(ctx context.Context, tx pgx.Tx, purchaseID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM wallet_transactions WHERE purchase_id = $1 AND type = $2
)
`
	var exists bool
	if err := tx.QueryRow(ctx, q, purchaseID, domain.WalletTxCashback).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// apply writes the cached balance and the immutable transaction row together.
func (r *Postgres) apply(ctx context.Context, tx pgx.Tx, userID, purchaseID int64, txType string, amount, balanceAfter decimal.Decimal, description string) (decimal.Decimal, error) {
	if _, err := tx.Exec(ctx, `UPDATE users SET wallet_balance = $1 WHERE id = $2`, balanceAfter, userID); err != nil {
		return decimal.Zero, err
	}
	const q = `
INSERT INTO wallet_transactions (user_id, purchase_id, type, amount, balance_after, description)
VALUES ($1, $2, $3, $4, $5, $6)
`
	if _, err := tx.Exec(ctx, q, userID, purchaseID, txType, amount, balanceAfter, description); err != nil {
		return decimal.Zero, err
	}
	r.logger.Printf("wallet repo: %s user_id=%d purchase_id=%d amount=%s balance_after=%s", txType, userID, purchaseID, amount, balanceAfter)
	return balanceAfter, nil
}

func lockBalance(ctx context.Context, tx pgx.Tx, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}
