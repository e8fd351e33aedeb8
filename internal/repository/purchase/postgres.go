package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	walletrepo "storefront/internal/repository/wallet"
)

const pgUniqueViolation = "23505"

type postgresRepo struct {
	pool   *pgxpool.Pool
	ledger walletrepo.Ledger
	logger *log.Logger
}

// NewPostgres builds the purchase repository. The wallet ledger participates
// in the same transactions as purchase writes.
func NewPostgres(pool *pgxpool.Pool, ledger walletrepo.Ledger, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, ledger: ledger, logger: logger}
}

func (r *postgresRepo) CreatePending(ctx context.Context, in CreateInput) (*domain.Purchase, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := r.insertPurchase(ctx, tx, in, domain.PurchaseStatusPending)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("purchase repo: created pending id=%d reference=%s amount_due=%s", p.ID, p.PaymentReference, p.AmountDue)
	return p, nil
}

func (r *postgresRepo) CreateWalletPaid(ctx context.Context, in CreateInput) (*WalletReceipt, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := r.insertPurchase(ctx, tx, in, domain.PurchaseStatusCompleted)
	if err != nil {
		return nil, err
	}

	balance, err := r.ledger.DebitTx(ctx, tx, in.UserID, in.AmountDue, p.ID, "Wallet payment for purchase.")
	if err != nil {
		return nil, err
	}
	if in.CashbackTotal.IsPositive() {
		balance, err = r.ledger.CreditTx(ctx, tx, in.UserID, in.CashbackTotal, p.ID, "Cashback credited.")
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("purchase repo: wallet paid id=%d reference=%s amount_due=%s balance=%s", p.ID, p.PaymentReference, p.AmountDue, balance)
	return &WalletReceipt{Purchase: p, WalletBalance: balance}, nil
}

func (r *postgresRepo) Settle(ctx context.Context, purchaseID int64) (*SettleResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const lockQuery = `
SELECT id, user_id, payment_reference, currency, subtotal, discount_total, amount_due, cashback_total, status, purchased_at, created_at
FROM purchases
WHERE id = $1
FOR UPDATE
`
	p, err := scanPurchase(tx.QueryRow(ctx, lockQuery, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if p.Status != domain.PurchaseStatusPending {
		// Duplicate confirmation (webhook retry or redirect racing the
		// webhook). The first writer already settled; nothing to do.
		return &SettleResult{Purchase: p, Settled: false}, nil
	}

	const settleQuery = `
UPDATE purchases
SET status = $1, purchased_at = now()
WHERE id = $2
RETURNING status, purchased_at
`
	if err := tx.QueryRow(ctx, settleQuery, domain.PurchaseStatusCompleted, p.ID).Scan(&p.Status, &p.PurchasedAt); err != nil {
		return nil, err
	}

	credited := false
	if p.UserID != nil && p.CashbackTotal.IsPositive() {
		already, err := r.ledger.HasCashbackCreditTx(ctx, tx, p.ID)
		if err != nil {
			return nil, err
		}
		if !already {
			if _, err := r.ledger.CreditTx(ctx, tx, *p.UserID, p.CashbackTotal, p.ID, "Cashback credited."); err != nil {
				return nil, err
			}
			credited = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("purchase repo: settled id=%d cashback_credited=%t", p.ID, credited)
	return &SettleResult{Purchase: p, Settled: true, CashbackCredited: credited}, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	const q = `
SELECT id, user_id, payment_reference, currency, subtotal, discount_total, amount_due, cashback_total, status, purchased_at, created_at
FROM purchases
WHERE id = $1
`
	p, err := scanPurchase(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, []*domain.Purchase{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64, f Filter, page, perPage int) ([]domain.Purchase, int, error) {
	where, args := buildFilter(userID, f)

	var total int
	countQuery := `SELECT COUNT(*) FROM purchases ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
SELECT id, user_id, payment_reference, currency, subtotal, discount_total, amount_due, cashback_total, status, purchased_at, created_at
FROM purchases ` + where + fmt.Sprintf(`
ORDER BY purchased_at DESC NULLS LAST, id DESC
LIMIT $%d OFFSET $%d
`, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	purchases, err := r.queryPurchases(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

func (r *postgresRepo) ListForExport(ctx context.Context, userID int64, f Filter, limit int) ([]domain.Purchase, error) {
	where, args := buildFilter(userID, f)
	q := `
SELECT id, user_id, payment_reference, currency, subtotal, discount_total, amount_due, cashback_total, status, purchased_at, created_at
FROM purchases ` + where + fmt.Sprintf(`
ORDER BY purchased_at DESC NULLS LAST, id DESC
LIMIT $%d
`, len(args)+1)
	args = append(args, limit)
	return r.queryPurchases(ctx, q, args...)
}

func (r *postgresRepo) HasPurchasedProduct(ctx context.Context, userID, productID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM purchase_items pi
	JOIN purchases p ON p.id = pi.purchase_id
	WHERE p.user_id = $1 AND pi.product_id = $2 AND p.status = ANY($3)
)
`
	var exists bool
	statuses := []string{domain.PurchaseStatusCompleted, domain.PurchaseStatusPaid}
	if err := r.pool.QueryRow(ctx, q, userID, productID, statuses).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// insertPurchase writes the purchase row and its item snapshots. The payment
// reference is a fresh UUID; creation retries on the (vanishingly unlikely)
// uniqueness collision.
func (r *postgresRepo) insertPurchase(ctx context.Context, tx pgx.Tx, in CreateInput, status string) (*domain.Purchase, error) {
	const q = `
INSERT INTO purchases (user_id, payment_reference, currency, subtotal, discount_total, amount_due, cashback_total, status, purchased_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $8 = 'completed' THEN now() END)
RETURNING id, user_id, payment_reference, currency, subtotal, discount_total, amount_due, cashback_total, status, purchased_at, created_at
`
	var p *domain.Purchase
	for attempt := 0; attempt < 5; attempt++ {
		// Nested transaction (savepoint) so a reference collision does not
		// poison the outer transaction.
		nested, err := tx.Begin(ctx)
		if err != nil {
			return nil, err
		}
		reference := uuid.NewString()
		row, err := scanPurchase(nested.QueryRow(ctx, q, in.UserID, reference, in.Currency, in.Subtotal, in.DiscountTotal, in.AmountDue, in.CashbackTotal, status))
		if err != nil {
			_ = nested.Rollback(ctx)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				continue
			}
			return nil, err
		}
		if err := nested.Commit(ctx); err != nil {
			return nil, err
		}
		p = row
		break
	}
	if p == nil {
		return nil, errors.New("payment reference collision")
	}

	const itemQuery = `
INSERT INTO purchase_items (purchase_id, product_id, name, quantity, unit_price, line_total, discount_amount, cashback_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id
`
	for i := range in.Items {
		item := in.Items[i]
		item.PurchaseID = p.ID
		if err := tx.QueryRow(ctx, itemQuery, p.ID, item.ProductID, item.Name, item.Quantity, item.UnitPrice, item.LineTotal, item.DiscountAmount, item.CashbackAmount).Scan(&item.ID); err != nil {
			return nil, err
		}
		p.Items = append(p.Items, item)
	}
	return p, nil
}

func (r *postgresRepo) queryPurchases(ctx context.Context, q string, args ...interface{}) ([]domain.Purchase, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []domain.Purchase
	var refs []*domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range purchases {
		refs = append(refs, &purchases[i])
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, purchases []*domain.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(purchases))
	byID := make(map[int64]*domain.Purchase, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	const q = `
SELECT id, purchase_id, product_id, name, quantity, unit_price, line_total, discount_amount, cashback_amount
FROM purchase_items
WHERE purchase_id = ANY($1)
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.PurchaseItem
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice, &item.LineTotal, &item.DiscountAmount, &item.CashbackAmount); err != nil {
			return err
		}
		if p, ok := byID[item.PurchaseID]; ok {
			p.Items = append(p.Items, item)
		}
	}
	return rows.Err()
}

func buildFilter(userID int64, f Filter) (string, []interface{}) {
	clauses := []string{"user_id = $1"}
	args := []interface{}{userID}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Reference != "" {
		add("payment_reference ILIKE $%d", "%"+f.Reference+"%")
	}
	if f.From != nil {
		add("purchased_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("purchased_at < $%d", *f.To)
	}
	if f.MinTotal != nil {
		add("amount_due >= $%d", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		add("amount_due <= $%d", *f.MaxTotal)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.PaymentReference,
		&p.Currency,
		&p.Subtotal,
		&p.DiscountTotal,
		&p.AmountDue,
		&p.CashbackTotal,
		&p.Status,
		&p.PurchasedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
