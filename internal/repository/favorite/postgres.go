package favorite

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	const q = `
SELECT f.user_id, f.product_id, f.created_at,
       p.id, p.category_id, COALESCE(c.name, ''), p.name, p.slug, COALESCE(p.description, ''), COALESCE(p.image, ''),
       p.price, p.discount_percent, p.cashback_percent, p.promo_label, p.promo_expires_at, p.created_at
FROM favorites f
JOIN products p ON p.id = f.product_id
LEFT JOIN categories c ON c.id = p.category_id
WHERE f.user_id = $1
ORDER BY f.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []domain.Favorite
	for rows.Next() {
		var f domain.Favorite
		var p domain.Product
		err := rows.Scan(
			&f.UserID, &f.ProductID, &f.CreatedAt,
			&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Slug, &p.Description, &p.Image,
			&p.Price, &p.DiscountPercent, &p.CashbackPercent, &p.PromoLabel, &p.PromoExpiresAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		f.Product = &p
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, userID, productID int64) error {
	const q = `
INSERT INTO favorites (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, userID, productID)
	return err
}

func (r *postgresRepo) Remove(ctx context.Context, userID, productID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
