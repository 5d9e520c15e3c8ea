package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/storefront-service/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func keys(d bson.D) []string {
	out := make([]string, 0, len(d))
	for _, e := range d {
		out = append(out, e.Key)
	}
	return out
}

func TestDecimal128RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "19.99", "1234567.891", "-3.5", "0.000001"} {
		v, err := toD128(dec(s))
		require.NoError(t, err)
		back, err := fromD128(v)
		require.NoError(t, err)
		assert.True(t, dec(s).Equal(back), "%s became %s", s, back)
	}
}

func TestDecimal128OutOfRangeIsInvalidInput(t *testing.T) {
	_, err := toD128(dec("0.12345678901234567890123456789012345678"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = orderSet(model.OrderPatch{
		Items: []model.OrderItem{{Name: "a", Price: dec("1.0000000000000000000000000000000000001"), Quantity: 1}},
	}, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestOrderDocConversion(t *testing.T) {
	now := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	o := model.Order{
		ID:            model.NewID(),
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Items:         []model.OrderItem{{ProductID: "p1", Name: "Iris", Price: dec("12.50"), Quantity: 2}},
		TotalAmount:   dec("25"),
		Status:        model.StatusShipped,
		IPAddress:     "198.51.100.2",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	doc, err := toOrderDoc(o)
	require.NoError(t, err)
	assert.Equal(t, o.ID, doc.ID.Hex())

	back, err := doc.model()
	require.NoError(t, err)
	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, o.Status, back.Status)
	assert.True(t, o.TotalAmount.Equal(back.TotalAmount))
	require.Len(t, back.Items, 1)
	assert.True(t, dec("12.50").Equal(back.Items[0].Price))
	assert.Equal(t, now, back.CreatedAt)
}

func TestProductDocDiscount(t *testing.T) {
	dp := dec("7")
	doc, err := toProductDoc(model.Product{Name: "x", Price: dec("10"), DiscountedPrice: &dp})
	require.NoError(t, err)
	require.NotNil(t, doc.DiscountedPrice)
	assert.True(t, doc.ID.IsZero())

	p, err := doc.model()
	require.NoError(t, err)
	require.NotNil(t, p.DiscountedPrice)
	assert.True(t, p.OnSale())

	_, err = toProductDoc(model.Product{ID: "not-hex"})
	assert.Error(t, err)
}

func TestOrderFilter(t *testing.T) {
	assert.Empty(t, orderFilter(model.OrderFilter{}))

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	f := orderFilter(model.OrderFilter{Status: model.StatusPending, Range: model.DateRange{From: &from, To: &to}})
	require.Equal(t, []string{"status", "createdAt"}, keys(f))
	created, ok := f[1].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, []string{"$gte", "$lte"}, keys(created))

	f = orderFilter(model.OrderFilter{Range: model.DateRange{To: &to}})
	require.Len(t, f, 1)
	assert.Equal(t, []string{"$lte"}, keys(f[0].Value.(bson.D)))
}

func TestOrderSetRecomputesTotal(t *testing.T) {
	now := time.Now().UTC()
	st := model.StatusCancelled
	set, err := orderSet(model.OrderPatch{Status: &st}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "updatedAt"}, keys(set))

	set, err = orderSet(model.OrderPatch{
		Items: []model.OrderItem{{Name: "a", Price: dec("3"), Quantity: 3}},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"items", "totalAmount", "updatedAt"}, keys(set))
	total, err := fromD128(set[1].Value.(primitive.Decimal128))
	require.NoError(t, err)
	assert.True(t, dec("9").Equal(total))
}

func TestProductUpdate(t *testing.T) {
	name, stock := "New", int64(0)
	update, err := productUpdate(model.ProductPatch{Name: &name, Stock: &stock}, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"$set"}, keys(update))
	assert.Equal(t, []string{"name", "stock", "updatedAt"}, keys(update[0].Value.(bson.D)))

	update, err = productUpdate(model.ProductPatch{DiscountedPrice: model.SetDecimal(dec("7"))}, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"$set"}, keys(update))
	assert.Equal(t, []string{"discountedPrice", "updatedAt"}, keys(update[0].Value.(bson.D)))

	update, err = productUpdate(model.ProductPatch{DiscountedPrice: model.NullableDecimal{Set: true}}, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"$set", "$unset"}, keys(update))
	assert.Equal(t, []string{"updatedAt"}, keys(update[0].Value.(bson.D)))
	assert.Equal(t, []string{"discountedPrice"}, keys(update[1].Value.(bson.D)))
}

// TestStoreRoundTrip runs against a live server when MONGO_TEST_URI is set.
func TestStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	db := "storefront_test_" + model.NewID()
	s, err := Connect(ctx, uri, db, 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.client.Database(db).Drop(context.Background())
		_ = s.Close(context.Background())
	})

	now := model.Now()
	o, err := s.CreateOrder(ctx, model.Order{
		CustomerName: "Ada",
		Items:        []model.OrderItem{{Name: "a", Price: dec("4.5"), Quantity: 2}},
		TotalAmount:  dec("9"),
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)

	got, err := s.UpdateOrder(ctx, o.ID, model.OrderPatch{
		Items: []model.OrderItem{{Name: "b", Price: dec("10"), Quantity: 3}},
	}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(got.TotalAmount))
	assert.Equal(t, "Ada", got.CustomerName)

	list, err := s.ListOrders(ctx, model.OrderFilter{Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteOrder(ctx, o.ID))
	assert.ErrorIs(t, s.DeleteOrder(ctx, o.ID), model.ErrNotFound)
	_, err = s.GetOrder(ctx, o.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
