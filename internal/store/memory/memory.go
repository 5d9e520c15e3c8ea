// Package memory is an in-process store for products and orders.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]model.Product
	orders   map[string]model.Order
}

func New() *Store {
	return &Store{
		products: make(map[string]model.Product),
		orders:   make(map[string]model.Order),
	}
}

func (s *Store) CreateProduct(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = model.NewID()
	}
	s.products[p.ID] = cloneProduct(p)
	return cloneProduct(p), nil
}

func (s *Store) GetProduct(_ context.Context, id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, model.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *Store) ListProducts(_ context.Context, category string) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	slices.SortFunc(out, func(a, b model.Product) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) UpdateProduct(_ context.Context, id string, patch model.ProductPatch, now time.Time) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, model.ErrNotFound
	}
	patch.Apply(&p, now)
	s.products[id] = cloneProduct(p)
	return cloneProduct(p), nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) CreateOrder(_ context.Context, o model.Order) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = model.NewID()
	}
	s.orders[o.ID] = cloneOrder(o)
	return cloneOrder(o), nil
}

func (s *Store) GetOrder(_ context.Context, id string) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, model.ErrNotFound
	}
	return cloneOrder(o), nil
}

// ListOrders returns matching orders newest first.
func (s *Store) ListOrders(_ context.Context, f model.OrderFilter) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, 0)
	for _, o := range s.orders {
		if f.Match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b model.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) UpdateOrder(_ context.Context, id string, patch model.OrderPatch, now time.Time) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, model.ErrNotFound
	}
	patch.Apply(&o, now)
	s.orders[id] = cloneOrder(o)
	return cloneOrder(o), nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func cloneProduct(p model.Product) model.Product {
	if p.DiscountedPrice != nil {
		d := *p.DiscountedPrice
		p.DiscountedPrice = &d
	}
	return p
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}
