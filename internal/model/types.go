// Package model defines domain types used by the service.
package model

import (
	"bytes"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a catalog entry.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Category        string           `json:"category,omitempty"`
	Stock           int64            `json:"stock"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// OnSale reports whether the product carries a discounted price below its list price.
func (p Product) OnSale() bool {
	return p.DiscountedPrice != nil && p.DiscountedPrice.LessThan(p.Price)
}

// ProductInput is the payload accepted when creating a product.
type ProductInput struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discountedPrice,omitempty"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Category        string           `json:"category,omitempty"`
	Stock           *int64           `json:"stock"`
}

// NullableDecimal is a patch field that tells an absent key apart from an
// explicit null. Set is true whenever the key was present; a nil Value with
// Set means clear.
type NullableDecimal struct {
	Set   bool
	Value *decimal.Decimal
}

// SetDecimal returns a NullableDecimal holding d.
func SetDecimal(d decimal.Decimal) NullableDecimal {
	return NullableDecimal{Set: true, Value: &d}
}

// Cleared reports whether the field asks for the value to be removed.
func (n NullableDecimal) Cleared() bool { return n.Set && n.Value == nil }

func (n *NullableDecimal) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Value = &d
	return nil
}

func (n NullableDecimal) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return n.Value.MarshalJSON()
}

// ProductPatch carries a partial product update. Nil fields are left untouched.
// DiscountedPrice sent as null removes the discount.
type ProductPatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	DiscountedPrice NullableDecimal  `json:"discountedPrice,omitzero"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Stock           *int64           `json:"stock,omitempty"`
}

// Apply merges the patch into p and stamps the update time.
func (pt ProductPatch) Apply(p *Product, now time.Time) {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.DiscountedPrice.Set {
		p.DiscountedPrice = nil
		if pt.DiscountedPrice.Value != nil {
			d := *pt.DiscountedPrice.Value
			p.DiscountedPrice = &d
		}
	}
	if pt.ImageURL != nil {
		p.ImageURL = *pt.ImageURL
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
	p.UpdatedAt = now
}
