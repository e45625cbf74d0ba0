package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/duken/storefront/internal/cart"
	"github.com/duken/storefront/internal/config"
	"github.com/duken/storefront/internal/logging"
	"github.com/duken/storefront/internal/shop"
	"github.com/duken/storefront/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"feed_url", cfg.Catalog.FeedURL,
		"persistent_cart", cfg.Database.URL != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	storage, cleanup, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up cart storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	store := cart.NewStore(storage)
	store.Restore(ctx)
	slog.Info("cart restored", "items", store.Summary().Count)

	service := shop.NewService(cfg, store)

	// A failed first fetch is not fatal: the server starts and reports the
	// feed error on catalog views until a reload succeeds.
	if err := service.LoadCatalog(ctx); err != nil {
		slog.Error("initial catalog load failed", "error", err)
	} else {
		slog.Info("catalog loaded", "products", service.Catalog().Len())
	}

	server := web.NewServer(service, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// openStorage connects the cart store to Postgres when DATABASE_URL is set
// and falls back to in-memory storage otherwise. Without a database the cart
// works normally but does not survive restarts.
func openStorage(ctx context.Context, cfg *config.Config) (cart.Storage, func(), error) {
	if cfg.Database.URL == "" {
		slog.Warn("DATABASE_URL not set, cart state will not survive restarts")
		return cart.NewMemStorage(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	storage := cart.NewPGStorage(pool, cart.DefaultKey)
	if err := storage.Init(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	slog.Info("connected to database")
	return storage, pool.Close, nil
}
