// Package cart implements the shopper's working cart: one line per product,
// quantities capped at MaxQuantity, persisted after every change.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = 10

// Line is a product plus the quantity the shopper intends to buy.
type Line struct {
	model.Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Storage loads and saves the full cart state.
type Storage interface {
	Load() ([]Line, error)
	Save([]Line) error
}

// Cart holds the lines in insertion order.
type Cart struct {
	mu      sync.Mutex
	lines   []Line
	storage Storage
}

// New builds a cart from whatever storage holds. Missing or unreadable state
// yields an empty cart.
func New(storage Storage) *Cart {
	c := &Cart{storage: storage}
	lines, err := storage.Load()
	if err != nil {
		obs.Logger.Warn("cart_load_failed", "error", err)
		return c
	}
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 || l.Quantity > MaxQuantity || c.indexOf(l.ID) >= 0 {
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of p in the cart. A new line starts at 1; an existing line
// grows by one until it reaches MaxQuantity, after which Add does nothing.
func (c *Cart) Add(p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.snapshot()
	if i := c.indexOf(p.ID); i >= 0 {
		if next[i].Quantity >= MaxQuantity {
			return nil
		}
		next[i].Quantity++
	} else {
		next = append(next, Line{Product: p, Quantity: 1})
	}
	return c.commit(next)
}

// Remove drops the line for productID, if any.
func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	next := c.snapshot()
	return c.commit(append(next[:i], next[i+1:]...))
}

// UpdateQuantity sets the quantity of an existing line. Quantities outside
// 1..MaxQuantity and unknown products are ignored.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	next := c.snapshot()
	next[i].Quantity = quantity
	return c.commit(next)
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(nil)
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Count returns the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// OrderItems snapshots the cart as order items for checkout.
func (c *Cart) OrderItems() []model.OrderItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]model.OrderItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, model.OrderItem{
			ProductID: l.ID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

func (c *Cart) snapshot() []Line {
	return append([]Line(nil), c.lines...)
}

// commit persists next and only then makes it the current state, so a failed
// save leaves the cart as it was.
func (c *Cart) commit(next []Line) error {
	if err := c.storage.Save(append([]Line(nil), next...)); err != nil {
		return err
	}
	c.lines = next
	return nil
}
