package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/itempurchase/api/controllers"
	"github.com/angelmondragon/itempurchase/api/middleware"
	"github.com/angelmondragon/itempurchase/internal/accounts"
	"github.com/angelmondragon/itempurchase/internal/images"
	"github.com/angelmondragon/itempurchase/internal/items"
	"github.com/angelmondragon/itempurchase/internal/purchases"
	"github.com/angelmondragon/itempurchase/pkg/config"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/metrics"
	pkgredis "github.com/angelmondragon/itempurchase/pkg/redis"
)

// RedisStore is the redis surface the router needs. Pass a nil interface when
// redis is disabled.
type RedisStore interface {
	pkgredis.Pinger
	pkgredis.IdempotencyStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	itemsService items.Service,
	imagesService images.Service,
	purchasesService purchases.Service,
	accountsService accounts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var redisPinger controllers.Pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if redisStore != nil {
		redisPinger = redisStore
		idempotencyStore = redisStore
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(itemsService, logg))
			r.Post("/", controllers.ItemCreate(itemsService, logg))
			r.Get("/filter-options", controllers.ItemFilterOptions(itemsService, logg))
			r.Put("/{itemId}/image", controllers.ItemAttachImage(itemsService, logg))
		})
		r.Get("/images/search", controllers.ImageSearch(imagesService, logg))
		r.Post("/purchases", controllers.PurchaseCreate(purchasesService, logg))
		r.Get("/accounts/{accountId}", controllers.AccountGet(accountsService, logg))
		r.Get("/users/me", controllers.CurrentUser(accountsService, logg))
	})

	return r
}
