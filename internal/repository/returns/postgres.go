package returns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-api/internal/domain"
)

const returnColumns = `id::text, order_id::text, user_id::text, items, reason, status, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, req domain.ReturnRequest) (*domain.ReturnRequest, error) {
	items, err := json.Marshal(req.Lines)
	if err != nil {
		return nil, fmt.Errorf("encode return items: %w", err)
	}
	const q = `
INSERT INTO return_requests (order_id, user_id, items, reason, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + returnColumns
	return scanReturn(r.pool.QueryRow(ctx, q, req.OrderID, req.UserID, items, req.Reason, req.Status))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	out, err := scanReturn(r.pool.QueryRow(ctx, `SELECT `+returnColumns+` FROM return_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.ReturnRequest, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM return_requests WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	q := fmt.Sprintf(`SELECT %s FROM return_requests WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		returnColumns, cond, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.ReturnRequest
	for rows.Next() {
		req, err := scanReturn(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus) (*domain.ReturnRequest, error) {
	const q = `
UPDATE return_requests SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + returnColumns
	out, err := scanReturn(r.pool.QueryRow(ctx, q, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReturn(row rowScanner) (*domain.ReturnRequest, error) {
	var req domain.ReturnRequest
	var items []byte
	if err := row.Scan(&req.ID, &req.OrderID, &req.UserID, &items, &req.Reason, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &req.Lines); err != nil {
		return nil, fmt.Errorf("decode return items: %w", err)
	}
	return &req, nil
}
