// Package main boots the storefront HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/storefront-service/internal/catalog"
	"github.com/fairyhunter13/storefront-service/internal/config"
	httpapi "github.com/fairyhunter13/storefront-service/internal/http"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/orders"
	"github.com/fairyhunter13/storefront-service/internal/store/memory"
	mongostore "github.com/fairyhunter13/storefront-service/internal/store/mongo"
)

// backend is what both services need from a store, plus a way to release it.
type backend interface {
	catalog.ProductStore
	orders.OrderStore
	Close(ctx context.Context) error
}

type memoryBackend struct{ *memory.Store }

func (memoryBackend) Close(context.Context) error { return nil }

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memoryBackend{memory.New()}, nil
	case config.BackendMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func main() {
	if err := run(); err != nil {
		obs.Logger.Error("service_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "store_backend", cfg.StoreBackend, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}

	app := httpapi.NewApp(cfg, catalog.NewService(st), orders.NewService(st))
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		obs.Logger.Info("shutdown_signal")
		app.StartShutdown()

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			obs.Logger.Error("http_shutdown_error", "error", err)
		}
		if err := st.Close(sctx); err != nil {
			obs.Logger.Error("store_close_error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	obs.Logger.Info("service_stopped")
	return err
}
