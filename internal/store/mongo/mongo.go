// Package mongo persists products and orders in MongoDB.
//
// Documents use ObjectID keys and Decimal128 money fields. Partial updates
// are applied server side with a single FindOneAndUpdate so concurrent
// writers never lose each other's fields.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
)

type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	orders   *mongo.Collection
	timeout  time.Duration
}

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := New(client, database, timeout)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	obs.Logger.Info("mongo_connected", "database", database)
	return s, nil
}

func New(client *mongo.Client, database string, timeout time.Duration) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		products: db.Collection(productsCollection),
		orders:   db.Collection(ordersCollection),
		timeout:  timeout,
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	_, err := s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("orders indexes: %w", err)
	}
	_, err = s.products.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}})
	if err != nil {
		return fmt.Errorf("products indexes: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", model.ErrInvalidInput, id)
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return err
}

func (s *Store) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	doc, err := toProductDoc(p)
	if err != nil {
		return model.Product{}, err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if _, err := s.products.InsertOne(ctx, doc); err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = doc.ID.Hex()
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (model.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Product{}, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var doc productDoc
	if err := s.products.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return model.Product{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) ListProducts(ctx context.Context, category string) ([]model.Product, error) {
	filter := bson.D{}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch, now time.Time) (model.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Product{}, err
	}
	update, err := productUpdate(patch, now)
	if err != nil {
		return model.Product{}, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var doc productDoc
	err = s.products.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return model.Product{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	res, err := s.products.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	doc, err := toOrderDoc(o)
	if err != nil {
		return model.Order{}, err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if _, err := s.orders.InsertOne(ctx, doc); err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (model.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Order{}, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var doc orderDoc
	if err := s.orders.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return model.Order{}, notFound(err)
	}
	return doc.model()
}

// ListOrders returns matching orders newest first.
func (s *Store) ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.orders.Find(ctx, orderFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]model.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id string, patch model.OrderPatch, now time.Time) (model.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Order{}, err
	}
	set, err := orderSet(patch, now)
	if err != nil {
		return model.Order{}, err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	var doc orderDoc
	err = s.orders.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return model.Order{}, notFound(err)
	}
	return doc.model()
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	res, err := s.orders.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
