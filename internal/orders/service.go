// Package orders validates order writes, recomputes totals, and answers
// revenue statistics.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/stats"
)

// UnknownIP is recorded when the client address cannot be determined.
const UnknownIP = "0.0.0.0"

type Service struct {
	store OrderStore
	now   func() time.Time
}

func NewService(store OrderStore) *Service {
	return &Service{store: store, now: model.Now}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidInput}, args...)...)
}

func checkID(id string) error {
	if !model.ValidID(id) {
		return invalid("invalid order ID")
	}
	return nil
}

func checkItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return invalid("at least one item is required")
	}
	for i, it := range items {
		if it.Quantity < 1 {
			return invalid("item %d: quantity must be >= 1, got %d", i, it.Quantity)
		}
		if it.Price.IsNegative() {
			return invalid("item %d: price must be >= 0", i)
		}
	}
	return nil
}

func checkStatus(st model.Status) error {
	if !st.Valid() {
		return invalid("unknown status %q", st)
	}
	return nil
}

// Create places an order. The total is computed from the items; any total the
// client sent is ignored.
func (s *Service) Create(ctx context.Context, in model.OrderInput, ipAddress string) (model.Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	email := strings.TrimSpace(in.CustomerEmail)
	if name == "" || email == "" || len(in.Items) == 0 {
		return model.Order{}, invalid("customer name, email, and at least one item are required")
	}
	if err := checkItems(in.Items); err != nil {
		return model.Order{}, err
	}
	status := in.Status
	if status == "" {
		status = model.StatusPending
	}
	if err := checkStatus(status); err != nil {
		return model.Order{}, err
	}
	if strings.TrimSpace(ipAddress) == "" {
		ipAddress = UnknownIP
	}

	now := s.now()
	items := append([]model.OrderItem(nil), in.Items...)
	o := model.Order{
		CustomerName:    name,
		CustomerEmail:   email,
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		CustomerAddress: strings.TrimSpace(in.CustomerAddress),
		Items:           items,
		TotalAmount:     model.TotalOf(items),
		Status:          status,
		IPAddress:       ipAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return s.store.CreateOrder(ctx, o)
}

func (s *Service) Get(ctx context.Context, id string) (model.Order, error) {
	if err := checkID(id); err != nil {
		return model.Order{}, err
	}
	return s.store.GetOrder(ctx, id)
}

// List returns the orders matching f, newest first.
func (s *Service) List(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	if f.Status != "" {
		if err := checkStatus(f.Status); err != nil {
			return nil, err
		}
	}
	return s.store.ListOrders(ctx, f)
}

// Update merges patch into the order. Replacing items recomputes the total in
// the same write.
func (s *Service) Update(ctx context.Context, id string, patch model.OrderPatch) (model.Order, error) {
	if err := checkID(id); err != nil {
		return model.Order{}, err
	}
	if patch.CustomerName != nil {
		n := strings.TrimSpace(*patch.CustomerName)
		if n == "" {
			return model.Order{}, invalid("customerName must not be empty")
		}
		patch.CustomerName = &n
	}
	if patch.CustomerEmail != nil {
		e := strings.TrimSpace(*patch.CustomerEmail)
		if e == "" {
			return model.Order{}, invalid("customerEmail must not be empty")
		}
		patch.CustomerEmail = &e
	}
	if patch.CustomerPhone != nil {
		ph := strings.TrimSpace(*patch.CustomerPhone)
		patch.CustomerPhone = &ph
	}
	if patch.CustomerAddress != nil {
		a := strings.TrimSpace(*patch.CustomerAddress)
		patch.CustomerAddress = &a
	}
	if patch.Items != nil {
		if err := checkItems(patch.Items); err != nil {
			return model.Order{}, err
		}
	}
	if patch.Status != nil {
		if err := checkStatus(*patch.Status); err != nil {
			return model.Order{}, err
		}
	}
	patch.TotalAmount = nil
	return s.store.UpdateOrder(ctx, id, patch, s.now())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.DeleteOrder(ctx, id)
}

// Stats buckets the orders created within r by period.
func (s *Service) Stats(ctx context.Context, period stats.Period, r model.DateRange) (stats.Report, error) {
	list, err := s.store.ListOrders(ctx, model.OrderFilter{Range: r})
	if err != nil {
		return stats.Report{}, err
	}
	return stats.Aggregate(period, list), nil
}
