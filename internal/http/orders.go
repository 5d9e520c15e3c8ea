package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/stats"
)

// GET /api/orders?status=&startDate=&endDate=
func (a *App) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := model.ParseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	list, err := a.Orders.List(r.Context(), model.OrderFilter{Status: model.Status(q.Get("status")), Range: rng})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/orders/stats?period=&startDate=&endDate=
func (a *App) orderStatsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := stats.ParsePeriod(q.Get("period"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rng, err := model.ParseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rep, err := a.Orders.Stats(r.Context(), period, rng)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *App) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.shuttingDown(w) {
		return
	}
	var in model.OrderInput
	if !decodeBody(w, r, &in) {
		return
	}
	o, err := a.Orders.Create(r.Context(), in, ClientIP(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	ordersCreated.Add(1)
	obs.Logger.Info("order_created",
		"request_id", RequestIDFromContext(r.Context()),
		"order_id", o.ID,
		"items", len(o.Items),
		"total_amount", o.TotalAmount.String(),
	)
	writeJSON(w, http.StatusCreated, o)
}

func (a *App) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	o, err := a.Orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *App) updateOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.shuttingDown(w) {
		return
	}
	var patch model.OrderPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	o, err := a.Orders.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	ordersUpdated.Add(1)
	obs.Logger.Info("order_updated",
		"request_id", RequestIDFromContext(r.Context()),
		"order_id", o.ID,
		"status", string(o.Status),
		"total_amount", o.TotalAmount.String(),
	)
	writeJSON(w, http.StatusOK, o)
}

func (a *App) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	if a.shuttingDown(w) {
		return
	}
	id := r.PathValue("id")
	if err := a.Orders.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	ordersDeleted.Add(1)
	obs.Logger.Info("order_deleted", "request_id", RequestIDFromContext(r.Context()), "order_id", id)
	writeJSON(w, http.StatusOK, message{Message: "Order deleted successfully"})
}
