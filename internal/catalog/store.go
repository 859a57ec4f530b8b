package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wingho/backend-pos/internal/common"
)

// Store persists products in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// List returns all products ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get returns a single product by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products
		WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Insert stores a new product row.
func (s *Store) Insert(ctx context.Context, p Product) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO products (id, name, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5)`, p.ID, p.Name, p.Price, p.Stock, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateNameError(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites an existing product in place.
func (s *Store) Update(ctx context.Context, p Product) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE products SET name = $2, price = $3, stock = $4
		WHERE id = $1`, p.ID, p.Name, p.Price, p.Stock)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateNameError(err)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product row.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func duplicateNameError(err error) error {
	return common.NewAppError("DUPLICATE_NAME", "product name already exists", http.StatusConflict, err)
}
