package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wingho/backend-pos/internal/catalog"
)

// ErrCartNotFound indicates the requested cart does not exist.
var ErrCartNotFound = errors.New("cart not found")

// ErrInvalidProduct is returned when the product id does not resolve in the catalog.
var ErrInvalidProduct = errors.New("invalid product")

// ErrInsufficientStock is returned when an add would exceed the product's current stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidQty is returned for non-positive quantities.
var ErrInvalidQty = errors.New("quantity must be positive")

type productResolver interface {
	Get(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

// Service validates cart mutations against the catalog.
type Service struct {
	Store   *Store
	Catalog productResolver
}

// Add creates or increments a cart line after checking the product's current
// stock ceiling. Failure leaves the cart unchanged.
func (s *Service) Add(ctx context.Context, cartID string, productID uuid.UUID, qty int32) (string, error) {
	if s == nil || s.Store == nil || s.Catalog == nil {
		return "", errors.New("cart service not configured")
	}
	if qty <= 0 {
		return "", ErrInvalidQty
	}
	c := s.Store.Get(cartID)
	if c == nil {
		return "", ErrCartNotFound
	}
	product, err := s.Catalog.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return "", ErrInvalidProduct
		}
		return "", err
	}
	existing := c.Qty(productID)
	if existing > 0 {
		if existing+qty > product.Stock {
			return "", fmt.Errorf("cannot add %d more x '%s', only %d more can be added: %w",
				qty, product.Name, product.Stock-existing, ErrInsufficientStock)
		}
	} else if qty > product.Stock {
		return "", fmt.Errorf("cannot add %d x '%s', only %d in stock: %w",
			qty, product.Name, product.Stock, ErrInsufficientStock)
	}
	c.upsert(productID, product.Name, product.Price, qty)
	return fmt.Sprintf("Added %d x '%s' to the cart.", qty, product.Name), nil
}

// Snapshot returns an ordered view of the cart with per-line subtotals.
func (s *Service) Snapshot(cartID string) (Snapshot, error) {
	c := s.Store.Get(cartID)
	if c == nil {
		return Snapshot{}, ErrCartNotFound
	}
	return c.snapshot(), nil
}

// Clear empties the cart. It always succeeds for a known cart.
func (s *Service) Clear(cartID string) error {
	c := s.Store.Get(cartID)
	if c == nil {
		return ErrCartNotFound
	}
	c.clear()
	return nil
}
