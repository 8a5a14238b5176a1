package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	products "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/shipping"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/redis"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	var (
		dbPinger db.Pinger
		gormDB   *gorm.DB
	)
	if cfg.Storage.Backend == config.StorageBackendSQL {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
		dbPinger = dbClient
		gormDB = dbClient.DB()
	}

	backend, err := storage.Open(cfg.Storage, redisClient, gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to open storage backend", err)
		os.Exit(1)
	}

	var catalog products.Catalog = products.NewClient(cfg.Content, nil)
	if redisClient != nil && cfg.Content.CacheTTL > 0 {
		catalog = products.NewCachedCatalog(catalog, redisClient, cfg.Content.CacheTTL, logg)
	}
	productService, err := products.NewService(catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	sessionService, err := session.NewService(session.ServiceParams{
		Backend:  storage.Instrument(backend, storefrontMetrics),
		Products: productService,
		Resolver: shipping.NewResolver(nil),
		Cart: cart.Options{
			MergeDuplicates:  cfg.Cart.MergeDuplicates(),
			PlaceholderImage: cfg.Cart.PlaceholderImage,
		},
		Metrics: storefrontMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	var storagePinger controllers.Pinger
	if p, ok := backend.(controllers.Pinger); ok {
		storagePinger = p
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"storage_backend": backend.Name(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, storagePinger, dbPinger, redisClient, registry, productService, sessionService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
