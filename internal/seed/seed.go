package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	SKU       string
	Name      string
	Desc      string
	Price     string
	SalePrice *string
	Category  string
	Brand     string
	Inventory int
	Sizes     []string
	Colors    []string
	Featured  bool
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin@example.com", "admin12345"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	sale := "39.99"
	products := []productSeed{
		{
			SKU:       "SHIRT-LINEN-01",
			Name:      "Linen Shirt",
			Desc:      "Breathable linen shirt for warm days",
			Price:     "49.99",
			SalePrice: &sale,
			Category:  "shirts",
			Brand:     "Ironwood",
			Inventory: 40,
			Sizes:     []string{"S", "M", "L", "XL"},
			Colors:    []string{"white", "sand"},
			Featured:  true,
		},
		{
			SKU:       "TOTE-CANVAS-01",
			Name:      "Canvas Tote",
			Desc:      "Heavy canvas tote with internal pocket",
			Price:     "24.50",
			Category:  "bags",
			Brand:     "Ironwood",
			Inventory: 120,
			Colors:    []string{"natural", "navy"},
		},
		{
			SKU:       "SNEAKER-CT-01",
			Name:      "Court Sneaker",
			Desc:      "Leather court sneaker with rubber sole",
			Price:     "89.00",
			Category:  "shoes",
			Brand:     "Waypoint",
			Inventory: 25,
			Sizes:     []string{"40", "41", "42", "43", "44"},
			Colors:    []string{"white"},
			Featured:  true,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, role, status)
VALUES ($1, $2, 'Admin', 'User', 'admin', 'active')
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, email, string(hash))
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price, sale_price, category, brand, status,
    inventory_quantity, sizes, colors, is_featured)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, 'active', $8, $9, $10, $11)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    sale_price = EXCLUDED.sale_price,
    category = EXCLUDED.category,
    brand = EXCLUDED.brand,
    inventory_quantity = EXCLUDED.inventory_quantity,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors,
    is_featured = EXCLUDED.is_featured,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Desc, p.Price, p.SalePrice, p.Category, p.Brand,
		p.Inventory, p.Sizes, p.Colors, p.Featured)
	return err
}
