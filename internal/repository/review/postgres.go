package review

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

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Review, error) {
	const q = `
WITH inserted AS (
	INSERT INTO reviews (product_id, user_id, rating, comment)
	VALUES ($1, $2, $3, $4)
	RETURNING id, product_id, user_id, rating, comment, created_at
)
SELECT i.id, i.product_id, i.user_id, i.rating, i.comment, COALESCE(u.name, 'Anonymous'), i.created_at
FROM inserted i
LEFT JOIN users u ON u.id = i.user_id
`
	var rev domain.Review
	err := r.pool.QueryRow(ctx, q, in.ProductID, in.UserID, in.Rating, in.Comment).Scan(
		&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.Reviewer, &rev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID int64, page, perPage int) ([]domain.Review, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, COALESCE(u.name, 'Anonymous'), r.created_at
FROM reviews r
LEFT JOIN users u ON u.id = r.user_id
WHERE r.product_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.pool.Query(ctx, q, productID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.Reviewer, &rev.CreatedAt); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, total, rows.Err()
}
