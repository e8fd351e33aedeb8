package ticket

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

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.SupportTicket, error) {
	const q = `
INSERT INTO support_tickets (user_id, subject, message, priority, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, subject, message, priority, status, created_at
`
	var t domain.SupportTicket
	err := r.pool.QueryRow(ctx, q, in.UserID, in.Subject, in.Message, in.Priority, domain.TicketStatusOpen).Scan(
		&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Priority, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64, status string, page, perPage int) ([]domain.SupportTicket, int, error) {
	var (
		total int
		err   error
	)
	if status != "" {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM support_tickets WHERE user_id = $1 AND status = $2`, userID, status).Scan(&total)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM support_tickets WHERE user_id = $1`, userID).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	const q = `
SELECT id, user_id, subject, message, priority, status, created_at
FROM support_tickets
WHERE user_id = $1 AND ($2 = '' OR status = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`
	rows, err := r.pool.Query(ctx, q, userID, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tickets []domain.SupportTicket
	for rows.Next() {
		var t domain.SupportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Priority, &t.Status, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	return tickets, total, rows.Err()
}
