package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
)

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := a.Products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.shuttingDown(w) {
		return
	}
	var in model.ProductInput
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := a.Products.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	productsCreated.Add(1)
	obs.Logger.Info("product_created",
		"request_id", RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"category", p.Category,
	)
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.Products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.shuttingDown(w) {
		return
	}
	var patch model.ProductPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	p, err := a.Products.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	productsUpdated.Add(1)
	obs.Logger.Info("product_updated", "request_id", RequestIDFromContext(r.Context()), "product_id", p.ID)
	writeJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.shuttingDown(w) {
		return
	}
	id := r.PathValue("id")
	if err := a.Products.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	productsDeleted.Add(1)
	obs.Logger.Info("product_deleted", "request_id", RequestIDFromContext(r.Context()), "product_id", id)
	writeJSON(w, http.StatusOK, message{Message: "Product deleted successfully"})
}
