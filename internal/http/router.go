package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", app.listProductsHandler)
	mux.HandleFunc("POST /api/products", app.createProductHandler)
	mux.HandleFunc("GET /api/products/{id}", app.getProductHandler)
	mux.HandleFunc("PUT /api/products/{id}", app.updateProductHandler)
	mux.HandleFunc("DELETE /api/products/{id}", app.deleteProductHandler)

	mux.HandleFunc("GET /api/orders", app.listOrdersHandler)
	mux.HandleFunc("POST /api/orders", app.createOrderHandler)
	mux.HandleFunc("GET /api/orders/stats", app.orderStatsHandler)
	mux.HandleFunc("GET /api/orders/{id}", app.getOrderHandler)
	mux.HandleFunc("PUT /api/orders/{id}", app.updateOrderHandler)
	mux.HandleFunc("DELETE /api/orders/{id}", app.deleteOrderHandler)

	mux.HandleFunc("GET /healthz", app.healthHandler)
	mux.HandleFunc("GET /debug/metrics", app.metricsHandler)
	mux.Handle("GET /debug/vars", expvar.Handler())
	mux.HandleFunc("GET /openapi.yaml", app.openapiHandler)
	mux.HandleFunc("GET /docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}
