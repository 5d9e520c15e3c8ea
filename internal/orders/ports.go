package orders

import (
	"context"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

// OrderStore persists orders. Implementations return model.ErrNotFound for
// unknown ids, assign ids on create, list newest first, and apply patches
// (including the total recomputation) as a single write.
type OrderStore interface {
	CreateOrder(ctx context.Context, o model.Order) (model.Order, error)
	GetOrder(ctx context.Context, id string) (model.Order, error)
	ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error)
	UpdateOrder(ctx context.Context, id string, patch model.OrderPatch, now time.Time) (model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}
