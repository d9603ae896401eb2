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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/itempurchase/api/routes"
	"github.com/angelmondragon/itempurchase/internal/accounts"
	"github.com/angelmondragon/itempurchase/internal/images"
	"github.com/angelmondragon/itempurchase/internal/items"
	"github.com/angelmondragon/itempurchase/internal/purchases"
	"github.com/angelmondragon/itempurchase/pkg/config"
	"github.com/angelmondragon/itempurchase/pkg/db"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/metrics"
	"github.com/angelmondragon/itempurchase/pkg/migrate"
	"github.com/angelmondragon/itempurchase/pkg/redis"
	"github.com/angelmondragon/itempurchase/pkg/unsplash"
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
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; without it filter options and image lookups are not
	// cached and purchase retries are not deduplicated.
	var (
		redisClient *redis.Client
		redisStore  routes.RedisStore
		cache       redis.Cache
	)
	if redis.Enabled(cfg.Redis) {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		redisStore = redisClient
		cache = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, caching and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	accountsRepo := accounts.NewRepository(dbClient.DB())
	accountsService, err := accounts.NewService(accountsRepo)
	if err != nil {
		logg.Error(ctx, "failed to create accounts service", err)
		os.Exit(1)
	}

	itemsService, err := items.NewService(items.NewRepository(dbClient.DB()), accountsRepo, cache, logg, items.ServiceOptions{
		FilterOptionsTTL: cfg.Catalog.FilterOptionsTTL,
		SearchMaxLength:  cfg.Catalog.SearchMaxLength,
	})
	if err != nil {
		logg.Error(ctx, "failed to create items service", err)
		os.Exit(1)
	}

	purchasesService, err := purchases.NewService(dbClient, purchases.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create purchases service", err)
		os.Exit(1)
	}

	imagesService := images.NewService(newPhotoSearcher(ctx, cfg.Images, logg), cache, cfg.Images.CacheTTL, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisStore,
			httpMetrics,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			itemsService,
			imagesService,
			purchasesService,
			accountsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	shutdownErr = multierr.Append(shutdownErr, dbClient.Close())
	if redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	}
	if shutdownErr != nil {
		logg.Error(ctx, "errors during shutdown", shutdownErr)
		exitCode = 1
	}
	os.Exit(exitCode)
}

// newPhotoSearcher returns nil when no Unsplash key is configured so image
// lookups resolve to "no image".
func newPhotoSearcher(ctx context.Context, cfg config.ImagesConfig, logg *logger.Logger) images.PhotoSearcher {
	if cfg.UnsplashAccessKey == "" {
		logg.Warn(ctx, "unsplash access key missing, image enrichment disabled")
		return nil
	}
	client, err := unsplash.NewClient(cfg.UnsplashAccessKey, unsplash.WithBaseURL(cfg.UnsplashBaseURL))
	if err != nil {
		logg.Error(ctx, "failed to create unsplash client", err)
		return nil
	}
	return client
}
