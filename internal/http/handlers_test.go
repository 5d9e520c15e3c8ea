package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/config"
	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/orders"
	"github.com/fairyhunter13/storefront-service/internal/store/memory"
)

type errResp struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func setupApp(t *testing.T) (*App, http.Handler) {
	t.Helper()
	obs.InitLoggerTo(io.Discard, "info")
	st := memory.New()
	app := NewApp(config.Config{StoreBackend: config.BackendMemory}, catalog.NewService(st), orders.NewService(st))
	return app, NewRouter(app)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body %s)", v, err, rr.Body.String())
	}
	return v
}

const orderBody = `{"customerName":"Ada","customerEmail":"ada@example.com","totalAmount":1,
"items":[{"productId":"p1","name":"Vetiver","price":10,"quantity":2},{"productId":"p2","name":"Iris","price":5,"quantity":3}]}`

func TestOpenAPIServed(t *testing.T) {
	_, mux := setupApp(t)
	rr := do(t, mux, http.MethodGet, "/openapi.yaml", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct == "" {
		t.Fatalf("expected content-type set")
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("openapi:")) {
		t.Fatalf("expected openapi content")
	}
}

func TestDocsServed(t *testing.T) {
	_, mux := setupApp(t)
	rr := do(t, mux, http.MethodGet, "/docs", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "swagger-ui") {
		t.Fatalf("expected swagger-ui in docs body")
	}
}

func TestHealthzOK(t *testing.T) {
	_, mux := setupApp(t)
	rr := do(t, mux, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestMetricsHandler(t *testing.T) {
	_, mux := setupApp(t)
	if rr := do(t, mux, http.MethodPost, "/api/orders", orderBody); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	rr := do(t, mux, http.MethodGet, "/debug/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	m := decode[map[string]any](t, rr)
	for _, k := range []string{"orders_created", "products_created", "uptime_sec", "store_backend"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing %s", k)
		}
	}
	if n, _ := m["orders_created"].(float64); n < 1 {
		t.Fatalf("orders_created not counted: %v", m["orders_created"])
	}
}

func TestProductCRUD(t *testing.T) {
	_, mux := setupApp(t)
	rr := do(t, mux, http.MethodPost, "/api/products", `{"name":"Santal","price":89.9,"stock":4,"category":"woody"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	p := decode[model.Product](t, rr)
	if !model.ValidID(p.ID) || p.Stock != 4 {
		t.Fatalf("unexpected product: %+v", p)
	}

	rr = do(t, mux, http.MethodPut, "/api/products/"+p.ID, `{"discountedPrice":70}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	up := decode[model.Product](t, rr)
	if up.Name != "Santal" || up.Stock != 4 || !up.OnSale() {
		t.Fatalf("partial merge lost fields: %+v", up)
	}

	rr = do(t, mux, http.MethodPut, "/api/products/"+p.ID, `{"discountedPrice":null}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if up = decode[model.Product](t, rr); up.DiscountedPrice != nil || up.Stock != 4 {
		t.Fatalf("discount not removed: %+v", up)
	}

	rr = do(t, mux, http.MethodGet, "/api/products?category=woody", "")
	if list := decode[[]model.Product](t, rr); len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	if rr = do(t, mux, http.MethodDelete, "/api/products/"+p.ID, ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = do(t, mux, http.MethodDelete, "/api/products/"+p.ID, "")
	if rr.Code != http.StatusNotFound || decode[errResp](t, rr).Error != "not_found" {
		t.Fatalf("second delete: %d %s", rr.Code, rr.Body.String())
	}
	if rr = do(t, mux, http.MethodGet, "/api/products/"+p.ID, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestProductValidation(t *testing.T) {
	_, mux := setupApp(t)
	rr := do(t, mux, http.MethodPost, "/api/products", `{"name":"x","price":0,"stock":1}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := decode[errResp](t, rr)
	if e.Error != "validation_error" || e.Details == "" || strings.HasPrefix(e.Details, "invalid input") {
		t.Fatalf("unexpected error body: %+v", e)
	}
	if rr = do(t, mux, http.MethodGet, "/api/products/not-an-id", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: expected 400, got %d", rr.Code)
	}
}

func TestPostRequiresJSON(t *testing.T) {
	_, mux := setupApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(orderBody))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodPost, "/api/orders", `{"customerName":"a","bogus":true}`)
	if rr.Code != http.StatusBadRequest || decode[errResp](t, rr).Error != "invalid_json" {
		t.Fatalf("unknown field: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, mux, http.MethodPost, "/api/orders", `{`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("truncated json: expected 400, got %d", rr.Code)
	}
}

func TestCreateOrder_RecomputesTotalAndRecordsIP(t *testing.T) {
	_, mux := setupApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(orderBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	o := decode[model.Order](t, rr)
	if !o.TotalAmount.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected total 35, got %s", o.TotalAmount)
	}
	if o.Status != model.StatusPending || o.IPAddress != "203.0.113.9" {
		t.Fatalf("unexpected order: %+v", o)
	}
}

func TestUpdateOrder_ItemsAndStatus(t *testing.T) {
	_, mux := setupApp(t)
	o := decode[model.Order](t, do(t, mux, http.MethodPost, "/api/orders", orderBody))

	rr := do(t, mux, http.MethodPut, "/api/orders/"+o.ID, `{"status":"shipped"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[model.Order](t, rr)
	if got.Status != model.StatusShipped || !got.TotalAmount.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("status-only update changed total: %+v", got)
	}

	rr = do(t, mux, http.MethodPut, "/api/orders/"+o.ID, `{"items":[{"productId":"p3","name":"Musk","price":12.25,"quantity":4}],"totalAmount":5}`)
	got = decode[model.Order](t, rr)
	if !got.TotalAmount.Equal(decimal.NewFromInt(49)) || len(got.Items) != 1 {
		t.Fatalf("items update did not recompute total: %+v", got)
	}
	if got.CustomerName != "Ada" {
		t.Fatalf("partial merge lost customerName")
	}

	if rr = do(t, mux, http.MethodPut, "/api/orders/"+o.ID, `{"items":[]}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty items: expected 400, got %d", rr.Code)
	}
	if rr = do(t, mux, http.MethodPut, "/api/orders/"+model.NewID(), `{"status":"shipped"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("missing order: expected 404, got %d", rr.Code)
	}
}

func TestDeleteOrder_NotFound(t *testing.T) {
	_, mux := setupApp(t)
	o := decode[model.Order](t, do(t, mux, http.MethodPost, "/api/orders", orderBody))
	if rr := do(t, mux, http.MethodDelete, "/api/orders/"+o.ID, ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr := do(t, mux, http.MethodDelete, "/api/orders/"+o.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr = do(t, mux, http.MethodDelete, "/api/orders/"+model.NewID(), ""); rr.Code != http.StatusNotFound {
		t.Fatalf("never-existing id: expected 404, got %d", rr.Code)
	}
}

func TestListOrders_Filters(t *testing.T) {
	_, mux := setupApp(t)
	do(t, mux, http.MethodPost, "/api/orders", orderBody)
	delivered := strings.Replace(orderBody, `"totalAmount":1,`, `"status":"delivered",`, 1)
	if rr := do(t, mux, http.MethodPost, "/api/orders", delivered); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	list := decode[[]model.Order](t, do(t, mux, http.MethodGet, "/api/orders", ""))
	if len(list) != 2 || list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatalf("expected 2 orders newest first: %+v", list)
	}
	list = decode[[]model.Order](t, do(t, mux, http.MethodGet, "/api/orders?status=delivered", ""))
	if len(list) != 1 || list[0].Status != model.StatusDelivered {
		t.Fatalf("status filter: %+v", list)
	}
	list = decode[[]model.Order](t, do(t, mux, http.MethodGet, "/api/orders?endDate=2000-01-01", ""))
	if len(list) != 0 {
		t.Fatalf("date filter: %+v", list)
	}
	if rr := do(t, mux, http.MethodGet, "/api/orders?status=lost", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rr.Code)
	}
	if rr := do(t, mux, http.MethodGet, "/api/orders?startDate=yesterday", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rr.Code)
	}
}

func TestOrderStats(t *testing.T) {
	_, mux := setupApp(t)
	rr := do(t, mux, http.MethodGet, "/api/orders/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	want := `{"periodStats":[],"overallStats":{"totalOrders":0,"totalRevenue":0,"averageOrderValue":0}}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Fatalf("empty stats:\n got %s\nwant %s", got, want)
	}

	for i := 0; i < 2; i++ {
		do(t, mux, http.MethodPost, "/api/orders", orderBody)
	}
	rr = do(t, mux, http.MethodGet, "/api/orders/stats?period=month", "")
	var rep struct {
		PeriodStats []struct {
			Key         string `json:"key"`
			TotalOrders int    `json:"totalOrders"`
		} `json:"periodStats"`
		OverallStats struct {
			TotalOrders       int             `json:"totalOrders"`
			TotalRevenue      decimal.Decimal `json:"totalRevenue"`
			AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
		} `json:"overallStats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.PeriodStats) != 1 || rep.PeriodStats[0].TotalOrders != 2 || len(rep.PeriodStats[0].Key) != len("2024-05") {
		t.Fatalf("unexpected buckets: %+v", rep.PeriodStats)
	}
	if !rep.OverallStats.TotalRevenue.Equal(decimal.NewFromInt(70)) || !rep.OverallStats.AverageOrderValue.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("unexpected overall: %+v", rep.OverallStats)
	}

	if rr = do(t, mux, http.MethodGet, "/api/orders/stats?period=year", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad period: expected 400, got %d", rr.Code)
	}
	if rr = do(t, mux, http.MethodGet, "/api/orders/stats?startDate=2024-13-01", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rr.Code)
	}
}

func TestShutdownRejectsWrites(t *testing.T) {
	app, mux := setupApp(t)
	app.StartShutdown()
	rr := do(t, mux, http.MethodPost, "/api/orders", orderBody)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if rr = do(t, mux, http.MethodGet, "/api/orders", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads stay available, got %d", rr.Code)
	}
}

type failingStore struct {
	*memory.Store
}

func (failingStore) ListOrders(context.Context, model.OrderFilter) ([]model.Order, error) {
	return nil, errors.New("connection refused by db-7")
}

func TestUnexpectedErrorIsGeneric(t *testing.T) {
	obs.InitLoggerTo(io.Discard, "info")
	st := failingStore{memory.New()}
	app := NewApp(config.Config{}, catalog.NewService(st), orders.NewService(st))
	mux := NewRouter(app)

	rr := do(t, mux, http.MethodGet, "/api/orders", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "db-7") {
		t.Fatalf("cause leaked to caller: %s", rr.Body.String())
	}
	if e := decode[errResp](t, rr); e.Error != "internal_error" {
		t.Fatalf("unexpected error body: %+v", e)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first entry", map[string]string{"X-Forwarded-For": " 198.51.100.4 , 10.0.0.2"}, "10.0.0.9:80", "198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.5"}, "10.0.0.9:80", "198.51.100.5"},
		{"remote addr", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"nothing", nil, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
