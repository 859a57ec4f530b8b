package receipt

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested receipt does not exist.
var ErrNotFound = errors.New("receipt not found")

// ErrInvalidInput is returned when an edit would leave the record inconsistent.
var ErrInvalidInput = errors.New("invalid input")

// ErrDuplicateID indicates an identifier collision on create.
var ErrDuplicateID = errors.New("receipt id already exists")

// Store is the Postgres-backed receipt ledger. Every write runs in its own
// transaction: a receipt is either fully committed or absent.
type Store struct {
	Pool *pgxpool.Pool
}

// Create persists a new receipt atomically.
func (s *Store) Create(ctx context.Context, r Receipt) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin receipt tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	_, err = tx.Exec(ctx, `
		INSERT INTO receipts (receipt_id, created_at, products, total_before_discounts,
			discounts_applied, final_total, payment_method, payment_amount, change)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.CreatedAt, r.Products, r.TotalBeforeDiscounts,
		r.DiscountsApplied, r.FinalTotal, r.PaymentMethod, r.PaymentAmount, r.Change)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return tx.Commit(ctx)
}

// Get returns a single receipt by id.
func (s *Store) Get(ctx context.Context, id string) (Receipt, error) {
	row := s.Pool.QueryRow(ctx, selectColumns+` WHERE receipt_id = $1`, id)
	r, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, ErrNotFound
		}
		return Receipt{}, fmt.Errorf("get receipt: %w", err)
	}
	return r, nil
}

// List returns all receipts ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Receipt, error) {
	rows, err := s.Pool.Query(ctx, selectColumns+` ORDER BY created_at, receipt_id`)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// UpdatePayment changes the payment method and/or amount of a stored
// receipt. Change is recomputed against the stored final total, never by
// re-pricing, and must not go negative.
func (s *Store) UpdatePayment(ctx context.Context, id string, method *string, amount *int64) (Receipt, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("begin receipt tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row := tx.QueryRow(ctx, selectColumns+` WHERE receipt_id = $1 FOR UPDATE`, id)
	r, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, ErrNotFound
		}
		return Receipt{}, fmt.Errorf("lock receipt: %w", err)
	}

	if method != nil {
		r.PaymentMethod = *method
	}
	if amount != nil {
		if *amount < r.FinalTotal {
			return Receipt{}, fmt.Errorf("payment amount below final total: %w", ErrInvalidInput)
		}
		r.PaymentAmount = *amount
		r.Change = r.PaymentAmount - r.FinalTotal
	}

	_, err = tx.Exec(ctx, `
		UPDATE receipts SET payment_method = $2, payment_amount = $3, change = $4
		WHERE receipt_id = $1`, r.ID, r.PaymentMethod, r.PaymentAmount, r.Change)
	if err != nil {
		return Receipt{}, fmt.Errorf("update receipt: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, err
	}
	return r, nil
}

// Delete removes a receipt from the ledger.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM receipts WHERE receipt_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `
	SELECT receipt_id, created_at, products, total_before_discounts,
		discounts_applied, final_total, payment_method, payment_amount, change
	FROM receipts`

func scanReceipt(row pgx.Row) (Receipt, error) {
	var r Receipt
	err := row.Scan(&r.ID, &r.CreatedAt, &r.Products, &r.TotalBeforeDiscounts,
		&r.DiscountsApplied, &r.FinalTotal, &r.PaymentMethod, &r.PaymentAmount, &r.Change)
	return r, err
}
