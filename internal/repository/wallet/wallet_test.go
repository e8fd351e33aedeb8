package wallet

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_DebitAndCreditWriteLedger(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	userID := insertUser(ctx, t, pool, "50.00")
	purchaseID := insertPurchase(ctx, t, pool, userID)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	after, err := repo.DebitTx(ctx, tx, userID, decimal.RequireFromString("20.00"), purchaseID, "Wallet payment for purchase.")
	if err != nil {
		t.Fatalf("DebitTx: %v", err)
	}
	if !after.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("got balance %s after debit, want 30.00", after)
	}

	credited, err := repo.HasCashbackCreditTx(ctx, tx, purchaseID)
	if err != nil {
		t.Fatalf("HasCashbackCreditTx: %v", err)
	}
	if credited {
		t.Fatal("cashback reported before any credit")
	}

	after, err = repo.CreditTx(ctx, tx, userID, decimal.RequireFromString("1.50"), purchaseID, "Cashback credited.")
	if err != nil {
		t.Fatalf("CreditTx: %v", err)
	}
	if !after.Equal(decimal.RequireFromString("31.50")) {
		t.Fatalf("got balance %s after credit, want 31.50", after)
	}

	credited, err = repo.HasCashbackCreditTx(ctx, tx, purchaseID)
	if err != nil {
		t.Fatalf("HasCashbackCreditTx: %v", err)
	}
	if !credited {
		t.Fatal("cashback credit not visible inside its own transaction")
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	balance, err := repo.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("31.50")) {
		t.Fatalf("got committed balance %s, want 31.50", balance)
	}

	transactions, err := repo.RecentTransactions(ctx, userID, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(transactions))
	}
}

func TestPostgres_DebitOverdraft(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	userID := insertUser(ctx, t, pool, "5.00")
	purchaseID := insertPurchase(ctx, t, pool, userID)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	_, err = repo.DebitTx(ctx, tx, userID, decimal.RequireFromString("5.01"), purchaseID, "Wallet payment for purchase.")
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	balance, err := repo.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("got balance %s after rollback, want 5.00", balance)
	}
	transactions, err := repo.RecentTransactions(ctx, userID, 10)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(transactions) != 0 {
		t.Fatalf("got %d transactions after rollback, want 0", len(transactions))
	}
}

func TestPostgres_RollbackDiscardsLedgerWrites(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	userID := insertUser(ctx, t, pool, "50.00")
	purchaseID := insertPurchase(ctx, t, pool, userID)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := repo.DebitTx(ctx, tx, userID, decimal.RequireFromString("20.00"), purchaseID, "Wallet payment for purchase."); err != nil {
		t.Fatalf("DebitTx: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	balance, err := repo.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("got balance %s, want the debit rolled back to 50.00", balance)
	}
}

func insertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, balance string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO users (name, email, password_hash, wallet_balance)
VALUES ('Test User', 'test-' || gen_random_uuid()::text || '@example.com', 'x', $1::numeric)
RETURNING id
`, balance).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func insertPurchase(ctx context.Context, t *testing.T, pool *pgxpool.Pool, userID int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
INSERT INTO purchases (user_id, payment_reference, currency, amount_due, status)
VALUES ($1, gen_random_uuid()::text, 'USD', 20.00, 'pending')
RETURNING id
`, userID).Scan(&id)
	if err != nil {
		t.Fatalf("insert purchase: %v", err)
	}
	return id
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `
TRUNCATE wallet_transactions, purchase_items, purchases, cart_lines, favorites,
	reviews, support_tickets, api_tokens, products, categories, users
RESTART IDENTITY CASCADE
`)
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
