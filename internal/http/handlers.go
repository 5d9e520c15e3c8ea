package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/config"
	httpopenapi "github.com/fairyhunter13/storefront-service/internal/http/openapi"
	"github.com/fairyhunter13/storefront-service/internal/orders"
)

const maxBodyBytes = 1 << 20

var (
	productsCreated = expvar.NewInt("products_created")
	productsUpdated = expvar.NewInt("products_updated")
	productsDeleted = expvar.NewInt("products_deleted")
	ordersCreated   = expvar.NewInt("orders_created")
	ordersUpdated   = expvar.NewInt("orders_updated")
	ordersDeleted   = expvar.NewInt("orders_deleted")
)

type App struct {
	Cfg      config.Config
	Products *catalog.Service
	Orders   *orders.Service
	closing  atomic.Bool
	started  time.Time
}

type message struct {
	Message string `json:"message"`
}

func NewApp(cfg config.Config, products *catalog.Service, ords *orders.Service) *App {
	return &App{Cfg: cfg, Products: products, Orders: ords, started: time.Now()}
}

// StartShutdown makes every mutating endpoint answer 503 from now on.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) shuttingDown(w http.ResponseWriter) bool {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return true
	}
	return false
}

// decodeBody reads a JSON request body into v, rejecting unknown fields.
// It writes the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			WriteJSONError(w, http.StatusBadRequest, "invalid_json", "request body is empty")
			return false
		}
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if a.closing.Load() {
		status = "shutting_down"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"products_created": productsCreated.Value(),
		"products_updated": productsUpdated.Value(),
		"products_deleted": productsDeleted.Value(),
		"orders_created":   ordersCreated.Value(),
		"orders_updated":   ordersUpdated.Value(),
		"orders_deleted":   ordersDeleted.Value(),
		"store_backend":    a.Cfg.StoreBackend,
		"uptime_sec":       time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Storefront API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
