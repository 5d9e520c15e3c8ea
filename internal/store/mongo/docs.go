package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

type productDoc struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty"`
	Name            string                `bson:"name"`
	Description     string                `bson:"description"`
	Price           primitive.Decimal128  `bson:"price"`
	DiscountedPrice *primitive.Decimal128 `bson:"discountedPrice,omitempty"`
	ImageURL        string                `bson:"imageUrl,omitempty"`
	Category        string                `bson:"category,omitempty"`
	Stock           int64                 `bson:"stock"`
	CreatedAt       time.Time             `bson:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt"`
}

type orderItemDoc struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
}

type orderDoc struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	CustomerName    string               `bson:"customerName"`
	CustomerEmail   string               `bson:"customerEmail"`
	CustomerPhone   string               `bson:"customerPhone"`
	CustomerAddress string               `bson:"customerAddress"`
	Items           []orderItemDoc       `bson:"items"`
	TotalAmount     primitive.Decimal128 `bson:"totalAmount"`
	Status          string               `bson:"status"`
	IPAddress       string               `bson:"ipAddress"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func toD128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, ok := primitive.ParseDecimal128FromBigInt(d.Coefficient(), int(d.Exponent()))
	if !ok {
		return primitive.Decimal128{}, fmt.Errorf("%w: amount %s out of range", model.ErrInvalidInput, d)
	}
	return v, nil
}

func fromD128(v primitive.Decimal128) (decimal.Decimal, error) {
	bi, exp, err := v.BigInt()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(bi, int32(exp)), nil
}

func toProductDoc(p model.Product) (productDoc, error) {
	price, err := toD128(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	doc := productDoc{
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.DiscountedPrice != nil {
		dp, err := toD128(*p.DiscountedPrice)
		if err != nil {
			return productDoc{}, err
		}
		doc.DiscountedPrice = &dp
	}
	if p.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(p.ID); err != nil {
			return productDoc{}, err
		}
	}
	return doc, nil
}

func (d productDoc) model() (model.Product, error) {
	price, err := fromD128(d.Price)
	if err != nil {
		return model.Product{}, err
	}
	p := model.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		ImageURL:    d.ImageURL,
		Category:    d.Category,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DiscountedPrice != nil {
		dp, err := fromD128(*d.DiscountedPrice)
		if err != nil {
			return model.Product{}, err
		}
		p.DiscountedPrice = &dp
	}
	return p, nil
}

func toItemDocs(items []model.OrderItem) ([]orderItemDoc, error) {
	out := make([]orderItemDoc, 0, len(items))
	for _, it := range items {
		price, err := toD128(it.Price)
		if err != nil {
			return nil, err
		}
		out = append(out, orderItemDoc{ProductID: it.ProductID, Name: it.Name, Price: price, Quantity: it.Quantity})
	}
	return out, nil
}

func toOrderDoc(o model.Order) (orderDoc, error) {
	items, err := toItemDocs(o.Items)
	if err != nil {
		return orderDoc{}, err
	}
	total, err := toD128(o.TotalAmount)
	if err != nil {
		return orderDoc{}, err
	}
	doc := orderDoc{
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Items:           items,
		TotalAmount:     total,
		Status:          string(o.Status),
		IPAddress:       o.IPAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(o.ID); err != nil {
			return orderDoc{}, err
		}
	}
	return doc, nil
}

func (d orderDoc) model() (model.Order, error) {
	total, err := fromD128(d.TotalAmount)
	if err != nil {
		return model.Order{}, err
	}
	items := make([]model.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := fromD128(it.Price)
		if err != nil {
			return model.Order{}, err
		}
		items = append(items, model.OrderItem{ProductID: it.ProductID, Name: it.Name, Price: price, Quantity: it.Quantity})
	}
	return model.Order{
		ID:              d.ID.Hex(),
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		CustomerPhone:   d.CustomerPhone,
		CustomerAddress: d.CustomerAddress,
		Items:           items,
		TotalAmount:     total,
		Status:          model.Status(d.Status),
		IPAddress:       d.IPAddress,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}

// orderFilter translates an OrderFilter into a query document.
func orderFilter(f model.OrderFilter) bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	created := bson.D{}
	if f.Range.From != nil {
		created = append(created, bson.E{Key: "$gte", Value: *f.Range.From})
	}
	if f.Range.To != nil {
		created = append(created, bson.E{Key: "$lte", Value: *f.Range.To})
	}
	if len(created) > 0 {
		filter = append(filter, bson.E{Key: "createdAt", Value: created})
	}
	return filter
}

// orderSet builds the $set document for a patch. Replacing items always
// carries the recomputed total in the same document.
func orderSet(pt model.OrderPatch, now time.Time) (bson.D, error) {
	set := bson.D{}
	if pt.CustomerName != nil {
		set = append(set, bson.E{Key: "customerName", Value: *pt.CustomerName})
	}
	if pt.CustomerEmail != nil {
		set = append(set, bson.E{Key: "customerEmail", Value: *pt.CustomerEmail})
	}
	if pt.CustomerPhone != nil {
		set = append(set, bson.E{Key: "customerPhone", Value: *pt.CustomerPhone})
	}
	if pt.CustomerAddress != nil {
		set = append(set, bson.E{Key: "customerAddress", Value: *pt.CustomerAddress})
	}
	if pt.Items != nil {
		items, err := toItemDocs(pt.Items)
		if err != nil {
			return nil, err
		}
		total, err := toD128(model.TotalOf(pt.Items))
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "items", Value: items}, bson.E{Key: "totalAmount", Value: total})
	}
	if pt.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*pt.Status)})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	return set, nil
}

// productUpdate builds the update document for a patch. A cleared discount
// is removed with $unset in the same update.
func productUpdate(pt model.ProductPatch, now time.Time) (bson.D, error) {
	set := bson.D{}
	if pt.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *pt.Name})
	}
	if pt.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *pt.Description})
	}
	if pt.Price != nil {
		v, err := toD128(*pt.Price)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "price", Value: v})
	}
	if pt.DiscountedPrice.Value != nil {
		v, err := toD128(*pt.DiscountedPrice.Value)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "discountedPrice", Value: v})
	}
	if pt.ImageURL != nil {
		set = append(set, bson.E{Key: "imageUrl", Value: *pt.ImageURL})
	}
	if pt.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *pt.Category})
	}
	if pt.Stock != nil {
		set = append(set, bson.E{Key: "stock", Value: *pt.Stock})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})

	update := bson.D{{Key: "$set", Value: set}}
	if pt.DiscountedPrice.Cleared() {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "discountedPrice", Value: ""}}})
	}
	return update, nil
}
