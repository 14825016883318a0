package product

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
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

const productColumns = `
id::text, name, COALESCE(description, ''), price::text, sale_price::text, category, brand, sku, status,
inventory_quantity, images, sizes, colors, tags, rating, review_count, view_count,
is_featured, is_trending, created_by::text, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price, sale_price, category, brand, sku, status,
    inventory_quantity, images, sizes, colors, tags, is_featured, is_trending, created_by)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + productColumns
	var salePrice *string
	if p.SalePrice != nil {
		s := p.SalePrice.String()
		salePrice = &s
	}
	row := r.pool.QueryRow(ctx, q,
		p.Name, p.Description, p.Price.String(), salePrice, p.Category, p.Brand, p.SKU, p.Status,
		p.Inventory, p.Images, p.Sizes, p.Colors, p.Tags, p.IsFeatured, p.IsTrending, p.CreatedBy,
	)
	out, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: create sku=%s error=%v", p.SKU, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s sku=%s", out.ID, out.SKU)
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	// Malformed ids would otherwise error on the uuid cast instead of missing the row.
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	out, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	out, err := scanProduct(r.pool.QueryRow(ctx, q, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get sku=%s error=%v", sku, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.Brand != "" {
		where = append(where, "brand = "+arg(filter.Brand))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, "(name ILIKE "+p+" OR brand ILIKE "+p+" OR sku ILIKE "+p+")")
	}
	if filter.MinPrice != nil {
		where = append(where, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		where = append(where, "price <= "+arg(*filter.MaxPrice))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	order := "created_at DESC"
	switch filter.SortBy {
	case "price_asc":
		order = "price ASC"
	case "price_desc":
		order = "price DESC"
	case "rating":
		order = "rating DESC"
	case "popularity":
		order = "view_count DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE ` + cond +
		` ORDER BY ` + order + ` LIMIT ` + arg(limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()
	result, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.listWhere(ctx, "is_featured AND status = 'active'", "created_at DESC", limit)
}

func (r *postgresRepo) ListTrending(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.listWhere(ctx, "is_trending AND status = 'active'", "view_count DESC", limit)
}

func (r *postgresRepo) ListNewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.listWhere(ctx, "status = 'active'", "created_at DESC", limit)
}

func (r *postgresRepo) listWhere(ctx context.Context, cond, order string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	q := `SELECT ` + productColumns + ` FROM products WHERE ` + cond + ` ORDER BY ` + order + ` LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		r.logger.Printf("product repo: list %s error=%v", cond, err)
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products SET
    name = $2, description = NULLIF($3, ''), price = $4, sale_price = $5, category = $6,
    brand = $7, sku = $8, status = $9, inventory_quantity = $10, images = $11, sizes = $12,
    colors = $13, tags = $14, is_featured = $15, is_trending = $16, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	var salePrice *string
	if p.SalePrice != nil {
		s := p.SalePrice.String()
		salePrice = &s
	}
	row := r.pool.QueryRow(ctx, q,
		p.ID, p.Name, p.Description, p.Price.String(), salePrice, p.Category,
		p.Brand, p.SKU, p.Status, p.Inventory, p.Images, p.Sizes,
		p.Colors, p.Tags, p.IsFeatured, p.IsTrending,
	)
	out, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	return out, nil
}

// Upsert inserts or refreshes a product keyed by SKU. Used by the bulk
// importer; counters and flags on existing rows are left alone.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price, sale_price, category, brand, sku, status,
    inventory_quantity, images, sizes, colors, tags, created_by)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    sale_price = EXCLUDED.sale_price,
    category = EXCLUDED.category,
    brand = EXCLUDED.brand,
    status = EXCLUDED.status,
    inventory_quantity = EXCLUDED.inventory_quantity,
    images = EXCLUDED.images,
    sizes = EXCLUDED.sizes,
    colors = EXCLUDED.colors,
    tags = EXCLUDED.tags,
    updated_at = now()
RETURNING ` + productColumns
	var salePrice *string
	if p.SalePrice != nil {
		s := p.SalePrice.String()
		salePrice = &s
	}
	row := r.pool.QueryRow(ctx, q,
		p.Name, p.Description, p.Price.String(), salePrice, p.Category, p.Brand, p.SKU, p.Status,
		p.Inventory, p.Images, p.Sizes, p.Colors, p.Tags, p.CreatedBy,
	)
	out, err := scanProduct(row)
	if err != nil {
		r.logger.Printf("product repo: upsert sku=%s error=%v", p.SKU, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// AdjustInventory applies a guarded delta: a negative adjustment only
// succeeds while enough stock remains, so the counter can never go below
// zero even under concurrent writers.
func (r *postgresRepo) AdjustInventory(ctx context.Context, id string, delta int) (*domain.Product, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	q := `
UPDATE products
SET inventory_quantity = inventory_quantity + $2, updated_at = now()
WHERE id = $1 AND inventory_quantity + $2 >= 0
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, id, delta))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Printf("product repo: adjust inventory id=%s delta=%d error=%v", id, delta, err)
		return nil, err
	}
	// Either the product is missing or the guard failed; look it up to tell.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, &domain.InsufficientStockError{ProductID: id, Requested: -delta, Available: current.Inventory}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var price string
	var salePrice *string
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &price, &salePrice, &p.Category, &p.Brand, &p.SKU, &p.Status,
		&p.Inventory, &p.Images, &p.Sizes, &p.Colors, &p.Tags, &p.Rating, &p.ReviewCount, &p.ViewCount,
		&p.IsFeatured, &p.IsTrending, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	if salePrice != nil {
		sp, err := decimal.NewFromString(*salePrice)
		if err != nil {
			return nil, fmt.Errorf("parse sale price %q: %w", *salePrice, err)
		}
		p.SalePrice = &sp
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
