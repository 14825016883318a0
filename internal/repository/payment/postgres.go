package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-api/internal/domain"
)

const paymentColumns = `
id::text, user_id::text, type, COALESCE(nickname, ''), status, is_default,
details, last_used_at, created_at, updated_at`

// details is a JSONB document holding the per-type payload (card, paypal,
// or bank), same document trick as cart items.
type detailsDoc struct {
	Card   *domain.CardDetails   `json:"card,omitempty"`
	PayPal *domain.PayPalDetails `json:"paypal,omitempty"`
	Bank   *domain.BankDetails   `json:"bank,omitempty"`
}

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	details, err := json.Marshal(detailsDoc{Card: m.Card, PayPal: m.PayPal, Bank: m.Bank})
	if err != nil {
		return nil, fmt.Errorf("encode payment details: %w", err)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if m.IsDefault {
		if err := clearDefault(ctx, tx, m.UserID); err != nil {
			return nil, err
		}
	}
	const q = `
INSERT INTO payment_methods (user_id, type, nickname, status, is_default, details)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
RETURNING ` + paymentColumns
	out, err := scanPaymentMethod(tx.QueryRow(ctx, q,
		m.UserID, m.Type, m.Nickname, domain.PaymentMethodActive, m.IsDefault, details,
	))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, userID, id string) (*domain.PaymentMethod, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ` + paymentColumns + ` FROM payment_methods
WHERE id = $1 AND user_id = $2 AND status = 'active'`
	out, err := scanPaymentMethod(r.pool.QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_methods
WHERE user_id = $1 AND status = 'active' ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if uuid.Validate(m.ID) != nil {
		return nil, domain.ErrNotFound
	}
	details, err := json.Marshal(detailsDoc{Card: m.Card, PayPal: m.PayPal, Bank: m.Bank})
	if err != nil {
		return nil, fmt.Errorf("encode payment details: %w", err)
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if m.IsDefault {
		if err := clearDefault(ctx, tx, m.UserID); err != nil {
			return nil, err
		}
	}
	const q = `
UPDATE payment_methods
SET nickname = NULLIF($3, ''), is_default = $4, details = $5, updated_at = now()
WHERE id = $1 AND user_id = $2 AND status = 'active'
RETURNING ` + paymentColumns
	out, err := scanPaymentMethod(tx.QueryRow(ctx, q, m.ID, m.UserID, m.Nickname, m.IsDefault, details))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// Remove soft-deletes: the row flips to removed and drops out of every
// active-filtered query.
func (r *postgresRepo) Remove(ctx context.Context, userID, id string) error {
	if uuid.Validate(id) != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx,
		`UPDATE payment_methods SET status = 'removed', is_default = FALSE, updated_at = now()
WHERE id = $1 AND user_id = $2 AND status = 'active'`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id string) (*domain.PaymentMethod, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := clearDefault(ctx, tx, userID); err != nil {
		return nil, err
	}
	q := `UPDATE payment_methods SET is_default = TRUE, updated_at = now()
WHERE id = $1 AND user_id = $2 AND status = 'active'
RETURNING ` + paymentColumns
	out, err := scanPaymentMethod(tx.QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func clearDefault(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = FALSE, updated_at = now()
WHERE user_id = $1 AND is_default AND status = 'active'`, userID)
	if err != nil {
		return fmt.Errorf("clear default payment method: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentMethod(row rowScanner) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	var details []byte
	err := row.Scan(
		&m.ID, &m.UserID, &m.Type, &m.Nickname, &m.Status, &m.IsDefault,
		&details, &m.LastUsedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	var doc detailsDoc
	if err := json.Unmarshal(details, &doc); err != nil {
		return nil, fmt.Errorf("decode payment details: %w", err)
	}
	m.Card, m.PayPal, m.Bank = doc.Card, doc.PayPal, doc.Bank
	return &m, nil
}
