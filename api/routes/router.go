package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sduquej/mercadito-backend/api/controllers"
	"github.com/sduquej/mercadito-backend/api/middleware"
	"github.com/sduquej/mercadito-backend/internal/bundles"
	"github.com/sduquej/mercadito-backend/internal/cart"
	"github.com/sduquej/mercadito-backend/internal/products"
	"github.com/sduquej/mercadito-backend/internal/rewards"
	"github.com/sduquej/mercadito-backend/internal/roll"
	"github.com/sduquej/mercadito-backend/internal/shipping"
	"github.com/sduquej/mercadito-backend/pkg/config"
	"github.com/sduquej/mercadito-backend/pkg/db"
	"github.com/sduquej/mercadito-backend/pkg/enums"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *redis.Client
	Registry    *prometheus.Registry
	RollService roll.Service
	CartService cart.Service
	Shipping    shipping.Service
	Rewards     rewards.Service
	Products    *products.Repository
	Bundles     *bundles.Repository
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductsList(params.Products, logg))
		r.Get("/bundles", controllers.BundlesList(params.Bundles, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(middleware.RollRateLimit(cfg.RollRateLimit, params.Redis, logg)).
				Post("/roll", controllers.RollRequest(params.RollService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartList(params.CartService, logg))
				r.Post("/items", controllers.CartAddItem(params.CartService, logg))
				r.Post("/bundles", controllers.CartAddBundle(params.CartService, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(params.CartService, logg))
				r.Delete("/", controllers.CartClear(params.CartService, logg))
			})

			r.Get("/shipping/quote", controllers.ShippingQuote(params.Shipping, params.CartService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(string(enums.UserRoleAdmin), logg),
		)
		r.Get("/rewards-config", controllers.AdminGetRewardConfig(params.Rewards, logg))
		r.Put("/rewards-config", controllers.AdminPutRewardConfig(params.Rewards, logg))
	})

	return r
}
