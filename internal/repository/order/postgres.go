package order

import (
	"context"
	"encoding/json"
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

const orderColumns = `
id::text, order_number, user_id::text, items, shipping_address, billing_address,
shipping_method, payment_method, status, payment_status,
subtotal::text, tax_amount::text, shipping_cost::text, discount_amount::text, total_amount::text,
tracking_number, notes, created_at, updated_at, shipped_at, delivered_at`

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

func (r *postgresRepo) CreateCheckout(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Guarded decrement per line. The WHERE clause is what serializes
	// concurrent checkouts: the row lock taken by the first UPDATE makes the
	// second one re-evaluate the guard against the decremented value.
	for _, line := range o.Lines {
		cmd, err := tx.Exec(ctx, `
UPDATE products
SET inventory_quantity = inventory_quantity - $2, updated_at = now()
WHERE id = $1 AND inventory_quantity >= $2
`, line.ProductID, line.Quantity)
		if err != nil {
			r.logger.Printf("order repo: decrement product_id=%s qty=%d error=%v", line.ProductID, line.Quantity, err)
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			var available int
			err := tx.QueryRow(ctx, `SELECT inventory_quantity FROM products WHERE id = $1`, line.ProductID).Scan(&available)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			if err != nil {
				return nil, err
			}
			return nil, &domain.InsufficientStockError{ProductID: line.ProductID, Requested: line.Quantity, Available: available}
		}
	}

	items, shipAddr, billAddr, err := encodeSnapshots(o)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO orders (order_number, user_id, items, shipping_address, billing_address,
    shipping_method, payment_method, status, payment_status,
    subtotal, tax_amount, shipping_cost, discount_amount, total_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + orderColumns
	row := tx.QueryRow(ctx, q,
		o.OrderNumber, o.UserID, items, shipAddr, billAddr,
		o.ShippingMethod, o.PaymentMethod, o.Status, o.PaymentStatus,
		o.Subtotal.String(), o.Tax.String(), o.Shipping.String(), o.Discount.String(), o.Total.String(),
	)
	out, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: insert number=%s error=%v", o.OrderNumber, err)
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, o.UserID); err != nil {
		r.logger.Printf("order repo: clear cart user_id=%s error=%v", o.UserID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created number=%s user_id=%s total=%s", out.OrderNumber, out.UserID, out.Total)
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	out, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	out, err := scanOrder(r.pool.QueryRow(ctx, q, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get number=%s error=%v", number, err)
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error) {
	where := []string{"user_id = $1"}
	args := []any{filter.UserID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	return r.listWhere(ctx, strings.Join(where, " AND "), args, filter.Offset, filter.Limit)
}

func (r *postgresRepo) ListAdmin(ctx context.Context, filter AdminListFilter) ([]domain.Order, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(order_number ILIKE $%d OR EXISTS (
    SELECT 1 FROM users u WHERE u.id = orders.user_id
    AND (u.email ILIKE $%d OR u.first_name || ' ' || u.last_name ILIKE $%d)))`, n, n, n))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return r.listWhere(ctx, strings.Join(where, " AND "), args, filter.Offset, filter.Limit)
}

func (r *postgresRepo) listWhere(ctx context.Context, cond string, args []any, offset, limit int) ([]domain.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		r.logger.Printf("order repo: count error=%v", err)
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, cond, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Update writes the mutable order fields. shipped_at and delivered_at keep
// their first value: re-applying a status never overwrites an existing
// timestamp.
func (r *postgresRepo) Update(ctx context.Context, o domain.Order) (*domain.Order, error) {
	const q = `
UPDATE orders SET
    status = $2, payment_status = $3, tracking_number = $4, notes = $5,
    shipped_at = COALESCE(shipped_at, $6), delivered_at = COALESCE(delivered_at, $7),
    updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns
	row := r.pool.QueryRow(ctx, q, o.ID, o.Status, o.PaymentStatus, o.TrackingNumber, o.Notes, o.ShippedAt, o.DeliveredAt)
	out, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: update id=%s error=%v", o.ID, err)
		return nil, err
	}
	r.logger.Printf("order repo: updated id=%s status=%s payment_status=%s", out.ID, out.Status, out.PaymentStatus)
	return out, nil
}

func (r *postgresRepo) Stats(ctx context.Context) (*domain.OrderStats, error) {
	const q = `
SELECT COUNT(*),
    COUNT(*) FILTER (WHERE status = 'pending'),
    COUNT(*) FILTER (WHERE status = 'processing'),
    COUNT(*) FILTER (WHERE status = 'shipped'),
    COUNT(*) FILTER (WHERE status = 'delivered'),
    COUNT(*) FILTER (WHERE status = 'cancelled'),
    COALESCE(SUM(total_amount), 0)::text,
    COALESCE(AVG(total_amount), 0)::text
FROM orders
`
	var s domain.OrderStats
	var revenue, avg string
	err := r.pool.QueryRow(ctx, q).Scan(
		&s.TotalOrders, &s.PendingOrders, &s.ProcessingOrders, &s.ShippedOrders,
		&s.DeliveredOrders, &s.CancelledOrders, &revenue, &avg,
	)
	if err != nil {
		r.logger.Printf("order repo: stats error=%v", err)
		return nil, err
	}
	if s.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return nil, fmt.Errorf("parse revenue %q: %w", revenue, err)
	}
	avgValue, err := decimal.NewFromString(avg)
	if err != nil {
		return nil, fmt.Errorf("parse average %q: %w", avg, err)
	}
	s.AverageOrderValue = avgValue.Round(2)
	return &s, nil
}

func encodeSnapshots(o domain.Order) (items, shipping, billing []byte, err error) {
	if items, err = json.Marshal(o.Lines); err != nil {
		return nil, nil, nil, fmt.Errorf("encode order items: %w", err)
	}
	if shipping, err = json.Marshal(o.ShippingAddress); err != nil {
		return nil, nil, nil, fmt.Errorf("encode shipping address: %w", err)
	}
	if billing, err = json.Marshal(o.BillingAddress); err != nil {
		return nil, nil, nil, fmt.Errorf("encode billing address: %w", err)
	}
	return items, shipping, billing, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var items, shipAddr, billAddr []byte
	var subtotal, tax, shipping, discount, total string
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &items, &shipAddr, &billAddr,
		&o.ShippingMethod, &o.PaymentMethod, &o.Status, &o.PaymentStatus,
		&subtotal, &tax, &shipping, &discount, &total,
		&o.TrackingNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.ShippedAt, &o.DeliveredAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Lines); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(shipAddr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billAddr, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("decode billing address: %w", err)
	}
	for name, pair := range map[string]struct {
		src string
		dst *decimal.Decimal
	}{
		"subtotal": {subtotal, &o.Subtotal},
		"tax":      {tax, &o.Tax},
		"shipping": {shipping, &o.Shipping},
		"discount": {discount, &o.Discount},
		"total":    {total, &o.Total},
	} {
		v, err := decimal.NewFromString(pair.src)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", name, pair.src, err)
		}
		*pair.dst = v
	}
	return &o, nil
}
