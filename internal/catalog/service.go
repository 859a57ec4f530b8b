package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// ErrInvalidInput is returned when the provided product fields are invalid.
var ErrInvalidInput = errors.New("invalid input")

const listCacheKey = "catalog:products:list"

type productStore interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service encapsulates catalog domain operations.
type Service struct {
	store    productStore
	cache    *Cache
	validate *validator.Validate
	now      func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store productStore
	Cache *Cache
	Now   func() time.Time
}

// ProductInput carries the mutable product fields for create/update calls.
type ProductInput struct {
	Name  string `json:"name" validate:"required,min=1"`
	Price int64  `json:"price" validate:"gte=0"`
	Stock int32  `json:"stock" validate:"gte=0"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		validate: validator.New(),
		now:      now,
	}, nil
}

// List returns all products ordered by creation time, served from cache when possible.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s.cache != nil {
		var cached []Product
		ok, err := s.cache.GetJSON(ctx, listCacheKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, listCacheKey, products)
	}
	return products, nil
}

// Get returns a product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.store.Get(ctx, id)
}

// Create validates and stores a new product, assigning a fresh identifier.
func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := s.validateInput(in); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Stock:     in.Stock,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return Product{}, err
	}
	s.invalidateList(ctx)
	return p, nil
}

// Update overwrites the named product in place. Open cart lines keep the
// price and name they captured at add time.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in ProductInput) (Product, error) {
	if err := s.validateInput(in); err != nil {
		return Product{}, err
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	existing.Name = strings.TrimSpace(in.Name)
	existing.Price = in.Price
	existing.Stock = in.Stock
	if err := s.store.Update(ctx, existing); err != nil {
		return Product{}, err
	}
	s.invalidateList(ctx)
	return existing, nil
}

// Delete removes the product. Cart lines referencing it remain valid since
// they hold their own captured name and price.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

func (s *Service) validateInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name must not be empty: %w", ErrInvalidInput)
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%s: %w", validationMessage(err), ErrInvalidInput)
	}
	return nil
}

func (s *Service) invalidateList(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, listCacheKey)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		switch verrs[0].Tag() {
		case "gte":
			return field + " must not be negative"
		case "required", "min":
			return field + " is required"
		}
		return field + " is invalid"
	}
	return "invalid product fields"
}
