package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid order status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of a product taken when the order was placed.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalOf sums the line totals of items.
func TotalOf(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Order is a placed customer order.
type Order struct {
	ID              string          `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerAddress string          `json:"customerAddress"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	IPAddress       string          `json:"ipAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderInput is the payload accepted when placing an order.
//
// TotalAmount is accepted so checkout clients may echo their own figure, but it is
// never stored: the total is always recomputed from Items.
type OrderInput struct {
	CustomerName    string           `json:"customerName"`
	CustomerEmail   string           `json:"customerEmail"`
	CustomerPhone   string           `json:"customerPhone"`
	CustomerAddress string           `json:"customerAddress"`
	Items           []OrderItem      `json:"items"`
	Status          Status           `json:"status,omitempty"`
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`
}

// OrderPatch carries a partial order update. Nil fields are left untouched;
// a nil Items slice means the items are not being replaced.
type OrderPatch struct {
	CustomerName    *string          `json:"customerName,omitempty"`
	CustomerEmail   *string          `json:"customerEmail,omitempty"`
	CustomerPhone   *string          `json:"customerPhone,omitempty"`
	CustomerAddress *string          `json:"customerAddress,omitempty"`
	Items           []OrderItem      `json:"items,omitempty"`
	Status          *Status          `json:"status,omitempty"`
	TotalAmount     *decimal.Decimal `json:"totalAmount,omitempty"`
}

// Apply merges the patch into o. Replacing the items recomputes the total in
// the same step; a client-supplied TotalAmount is ignored.
func (pt OrderPatch) Apply(o *Order, now time.Time) {
	if pt.CustomerName != nil {
		o.CustomerName = *pt.CustomerName
	}
	if pt.CustomerEmail != nil {
		o.CustomerEmail = *pt.CustomerEmail
	}
	if pt.CustomerPhone != nil {
		o.CustomerPhone = *pt.CustomerPhone
	}
	if pt.CustomerAddress != nil {
		o.CustomerAddress = *pt.CustomerAddress
	}
	if pt.Items != nil {
		o.Items = append([]OrderItem(nil), pt.Items...)
		o.TotalAmount = TotalOf(o.Items)
	}
	if pt.Status != nil {
		o.Status = *pt.Status
	}
	o.UpdatedAt = now
}

// OrderFilter narrows an order listing. Zero values match everything.
type OrderFilter struct {
	Status Status
	Range  DateRange
}

// Match reports whether o passes the filter.
func (f OrderFilter) Match(o Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return f.Range.Contains(o.CreatedAt)
}
