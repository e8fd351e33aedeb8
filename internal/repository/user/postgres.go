package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

const pgUniqueViolation = "23505"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	const q = `
INSERT INTO users (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, name, email, password_hash, wallet_balance, created_at
`
	u, err := scanUser(r.pool.QueryRow(ctx, q, in.Name, in.Email, in.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, name, email, password_hash, wallet_balance, created_at
FROM users
WHERE email = $1
`
	return r.getOne(ctx, q, email)
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `
SELECT id, name, email, password_hash, wallet_balance, created_at
FROM users
WHERE id = $1
`
	return r.getOne(ctx, q, id)
}

func (r *postgresRepo) CreateToken(ctx context.Context, t Token) error {
	const q = `
INSERT INTO api_tokens (token, user_id, expires_at)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, t.Token, t.UserID, t.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	const q = `
SELECT u.id, u.name, u.email, u.password_hash, u.wallet_balance, u.created_at
FROM api_tokens t
JOIN users u ON u.id = t.user_id
WHERE t.token = $1 AND t.expires_at > now()
`
	return r.getOne(ctx, q, token)
}

func (r *postgresRepo) DeleteToken(ctx context.Context, token string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM api_tokens WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) getOne(ctx context.Context, q string, arg interface{}) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.WalletBalance, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
