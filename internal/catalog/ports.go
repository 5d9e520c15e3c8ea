package catalog

import (
	"context"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// ProductStore persists products. Implementations return model.ErrNotFound for
// unknown ids and assign ids on create.
type ProductStore interface {
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	ListProducts(ctx context.Context, category string) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch, now time.Time) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
