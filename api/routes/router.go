package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	products "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storagePinger controllers.Pinger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	productService products.Service,
	sessionService session.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	ready := map[string]controllers.Pinger{}
	if storagePinger != nil {
		ready["storage"] = storagePinger
	}
	if dbP != nil {
		ready["db"] = dbP
	}
	if redisClient != nil {
		ready["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	mutationPolicy := middleware.NewRateLimitPolicy(
		"mutation",
		cfg.RateLimit.MutationWindow,
		cfg.RateLimit.MutationLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductsList(productService, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(productService, logg))

		r.Route("/shipping", func(r chi.Router) {
			r.Get("/cities", controllers.ShippingCities(sessionService))
			r.Post("/quote", controllers.ShippingQuote(sessionService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(middleware.SessionOptions{
				TTL:    cfg.Storage.SlotTTL,
				Secure: cfg.App.IsProd(),
			}, logg))
			if redisClient != nil {
				r.Use(middleware.RateLimit(mutationPolicy, redisClient, logg))
			}

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(sessionService, logg))
				r.Delete("/", controllers.CartClear(sessionService, logg))
				r.Post("/items", controllers.CartAddItem(sessionService, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(sessionService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(sessionService, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistGet(sessionService, logg))
				r.Delete("/", controllers.WishlistClear(sessionService, logg))
				r.Post("/toggle", controllers.WishlistToggle(sessionService, logg))
				r.Get("/items/{productId}", controllers.WishlistContains(sessionService, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemove(sessionService, logg))
			})

			r.Post("/checkout", controllers.Checkout(sessionService, logg))
		})
	})

	return r
}
