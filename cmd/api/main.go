package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bloomthreads/cartstate/api/routes"
	"github.com/bloomthreads/cartstate/internal/cart"
	"github.com/bloomthreads/cartstate/pkg/config"
	"github.com/bloomthreads/cartstate/pkg/db"
	"github.com/bloomthreads/cartstate/pkg/keyvalue"
	"github.com/bloomthreads/cartstate/pkg/logger"
	"github.com/bloomthreads/cartstate/pkg/metrics"
	"github.com/bloomthreads/cartstate/pkg/migrate"
	"github.com/bloomthreads/cartstate/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	kv, backendPinger, cleanup, err := buildSlotBackend(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap slot backend", err)
		os.Exit(1)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()

	store, err := cart.NewStore(context.Background(), cart.Options{
		KV:         kv,
		StorageKey: cfg.Cart.StorageKey,
		Bus:        pubsub.NewBus(logg),
		Logger:     logg,
		Metrics:    metrics.NewCartMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		os.Exit(1)
	}

	if redisStore, ok := kv.(*keyvalue.RedisStore); ok && cfg.Cart.CrossSync {
		go func() {
			for range redisStore.Watch(context.Background()) {
				store.Reload(context.Background())
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Cart.Backend,
	})
	logg.Info(ctx, "starting cart api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, backendPinger, store, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "cart api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildSlotBackend wires the configured durable slot: in-process memory, the
// relational store (postgres or sqlite) or redis. The returned cleanup is
// always safe to call.
func buildSlotBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (keyvalue.Store, db.Pinger, func(), error) {
	noop := func() {}

	switch cfg.Cart.Backend {
	case config.CartBackendMemory:
		return keyvalue.NewMemory(), nil, noop, nil

	case config.CartBackendRedis:
		channel := ""
		if cfg.Cart.CrossSync {
			channel = cfg.Cart.SignalChannel
		}
		redisStore, err := keyvalue.NewRedis(ctx, cfg.Redis, channel)
		if err != nil {
			return nil, nil, noop, err
		}
		cleanup := func() {
			if err := redisStore.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}
		return redisStore, redisStore, cleanup, nil

	default:
		dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
		if err != nil {
			return nil, nil, noop, err
		}
		cleanup := func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			cleanup()
			return nil, nil, noop, err
		}

		gormStore, err := keyvalue.NewGorm(dbClient.DB())
		if err != nil {
			cleanup()
			return nil, nil, noop, err
		}
		return gormStore, dbClient, cleanup, nil
	}
}
