// Package catalog validates product writes and delegates storage to a ProductStore.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

type Service struct {
	store ProductStore
	now   func() time.Time
}

func NewService(store ProductStore) *Service {
	return &Service{store: store, now: model.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidInput}, args...)...)
}

func checkID(id string) error {
	if !model.ValidID(id) {
		return invalid("invalid product ID")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || !in.Price.IsPositive() || in.Stock == nil {
		return model.Product{}, invalid("name, price, and stock are required")
	}
	if *in.Stock < 0 {
		return model.Product{}, invalid("stock must be >= 0")
	}
	if in.DiscountedPrice != nil && in.DiscountedPrice.IsNegative() {
		return model.Product{}, invalid("discountedPrice must be >= 0")
	}

	now := s.now()
	p := model.Product{
		Name:            name,
		Description:     in.Description,
		Price:           in.Price,
		DiscountedPrice: in.DiscountedPrice,
		ImageURL:        in.ImageURL,
		Category:        strings.TrimSpace(in.Category),
		Stock:           *in.Stock,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return s.store.CreateProduct(ctx, p)
}

func (s *Service) Get(ctx context.Context, id string) (model.Product, error) {
	if err := checkID(id); err != nil {
		return model.Product{}, err
	}
	return s.store.GetProduct(ctx, id)
}

// List returns all products, or only those in category when it is non-empty.
func (s *Service) List(ctx context.Context, category string) ([]model.Product, error) {
	return s.store.ListProducts(ctx, strings.TrimSpace(category))
}

func (s *Service) Update(ctx context.Context, id string, patch model.ProductPatch) (model.Product, error) {
	if err := checkID(id); err != nil {
		return model.Product{}, err
	}
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return model.Product{}, invalid("name must not be empty")
		}
		patch.Name = &n
	}
	if patch.Price != nil && !patch.Price.IsPositive() {
		return model.Product{}, invalid("price must be > 0")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return model.Product{}, invalid("stock must be >= 0")
	}
	if v := patch.DiscountedPrice.Value; v != nil && v.IsNegative() {
		return model.Product{}, invalid("discountedPrice must be >= 0")
	}
	return s.store.UpdateProduct(ctx, id, patch, s.now())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, id)
}
