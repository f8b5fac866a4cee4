package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/libreria-austral/storefront-gateway/api/controllers"
	"github.com/libreria-austral/storefront-gateway/api/middleware"
	"github.com/libreria-austral/storefront-gateway/internal/auth"
	"github.com/libreria-austral/storefront-gateway/internal/backoffice"
	"github.com/libreria-austral/storefront-gateway/internal/cart"
	"github.com/libreria-austral/storefront-gateway/internal/catalog"
	"github.com/libreria-austral/storefront-gateway/internal/orders"
	"github.com/libreria-austral/storefront-gateway/internal/session"
	"github.com/libreria-austral/storefront-gateway/internal/upstream"
	"github.com/libreria-austral/storefront-gateway/pkg/config"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
	"github.com/libreria-austral/storefront-gateway/pkg/metrics"
	"github.com/libreria-austral/storefront-gateway/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	upstreamClient *upstream.Client,
	sessions *session.Provider,
	carts *cart.Store,
	catalogFetcher catalog.Fetcher,
	authService *auth.Service,
	submitter *orders.Submitter,
	adminService *backoffice.Service,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient, upstreamClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public: a fresh browser has no token yet.
		r.Post("/session", controllers.SessionCreate(cfg.JWT, logg))
		r.Get("/products", controllers.ProductList(catalogFetcher, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(catalogFetcher, logg))
		r.Post("/auth/register", controllers.AuthRegister(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(cfg.JWT, logg))

			r.Get("/session", controllers.SessionShow(sessions, carts, logg))
			r.Post("/auth/login", controllers.AuthLogin(authService, logg))
			r.Post("/auth/logout", controllers.AuthLogout(authService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(carts, logg))
				r.Post("/items", controllers.CartAddItem(carts, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(carts, logg))
				r.Delete("/", controllers.CartClear(carts, logg))
			})

			r.Post("/checkout", controllers.Checkout(submitter, logg))
			r.Get("/orders", controllers.OrderHistory(submitter, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.SessionAuth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(adminService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(adminService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(adminService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(adminService, logg))
			r.Put("/{userId}", controllers.AdminUpdateUser(adminService, logg))
			r.Delete("/{userId}", controllers.AdminDeleteUser(adminService, logg))
		})
	})

	return r
}
