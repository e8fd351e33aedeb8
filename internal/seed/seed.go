// Package seed loads demo catalog data and a demo account for manual
// testing.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Category        string
	Name            string
	Slug            string
	Description     string
	Image           string
	Price           string
	DiscountPercent string
	CashbackPercent string
	PromoLabel      string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []string{"Electronics", "Home", "Outdoors"}
	for _, name := range categories {
		if err := ensureCategory(ctx, pool, name); err != nil {
			return fmt.Errorf("ensure category %s: %w", name, err)
		}
	}

	products := []productSeed{
		{
			Category:        "Electronics",
			Name:            "Wireless Earbuds",
			Slug:            "wireless-earbuds",
			Description:     "Compact earbuds with 24h battery case",
			Image:           "/images/wireless-earbuds.jpg",
			Price:           "79.99",
			DiscountPercent: "10",
			CashbackPercent: "5",
			PromoLabel:      "Autumn sale",
		},
		{
			Category:        "Electronics",
			Name:            "Smart Speaker",
			Slug:            "smart-speaker",
			Description:     "Voice controlled speaker with room-filling sound",
			Image:           "/images/smart-speaker.jpg",
			Price:           "129.00",
			DiscountPercent: "0",
			CashbackPercent: "3",
		},
		{
			Category:        "Home",
			Name:            "French Press",
			Slug:            "french-press",
			Description:     "1L borosilicate glass french press",
			Image:           "/images/french-press.jpg",
			Price:           "34.50",
			DiscountPercent: "15",
			CashbackPercent: "2",
			PromoLabel:      "Kitchen week",
		},
		{
			Category:        "Home",
			Name:            "Weighted Blanket",
			Slug:            "weighted-blanket",
			Description:     "7kg weighted blanket, washable cover",
			Image:           "/images/weighted-blanket.jpg",
			Price:           "89.00",
			DiscountPercent: "0",
			CashbackPercent: "4",
		},
		{
			Category:        "Outdoors",
			Name:            "Trail Backpack",
			Slug:            "trail-backpack",
			Description:     "28L daypack with rain cover",
			Image:           "/images/trail-backpack.jpg",
			Price:           "64.90",
			DiscountPercent: "20",
			CashbackPercent: "5",
			PromoLabel:      "Clearance",
		},
		{
			Category:        "Outdoors",
			Name:            "Camping Lantern",
			Slug:            "camping-lantern",
			Description:     "Rechargeable LED lantern, 3 brightness modes",
			Image:           "/images/camping-lantern.jpg",
			Price:           "24.99",
			DiscountPercent: "0",
			CashbackPercent: "2",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	if err := ensureDemoUser(ctx, pool, "Demo Shopper", "demo@example.com", "demo-password", "100.00"); err != nil {
		return fmt.Errorf("ensure demo user: %w", err)
	}

	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name string) error {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
ON CONFLICT (name) DO NOTHING
`
	_, err := pool.Exec(ctx, q, name)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (category_id, name, slug, description, image, price, discount_percent, cashback_percent, promo_label, promo_expires_at)
VALUES (
    (SELECT id FROM categories WHERE name = $1),
    $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric,
    NULLIF($9, ''),
    CASE WHEN $9 <> '' THEN now() + interval '30 days' END
)
ON CONFLICT (slug) DO UPDATE
SET category_id = EXCLUDED.category_id,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    image = EXCLUDED.image,
    price = EXCLUDED.price,
    discount_percent = EXCLUDED.discount_percent,
    cashback_percent = EXCLUDED.cashback_percent,
    promo_label = EXCLUDED.promo_label,
    promo_expires_at = EXCLUDED.promo_expires_at
`
	_, err := pool.Exec(ctx, q,
		p.Category, p.Name, p.Slug, p.Description, p.Image,
		p.Price, p.DiscountPercent, p.CashbackPercent, p.PromoLabel,
	)
	return err
}

func ensureDemoUser(ctx context.Context, pool *pgxpool.Pool, name, email, password, balance string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (name, email, password_hash, wallet_balance)
VALUES ($1, $2, $3, $4::numeric)
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, name, email, string(hashed), balance)
	return err
}
