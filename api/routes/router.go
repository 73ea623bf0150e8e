package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmfactory/pizzeria-backend/api/controllers"
	webhookcontrollers "github.com/mmfactory/pizzeria-backend/api/controllers/webhooks"
	"github.com/mmfactory/pizzeria-backend/api/middleware"
	adminsvc "github.com/mmfactory/pizzeria-backend/internal/admin"
	cartsvc "github.com/mmfactory/pizzeria-backend/internal/cart"
	checkoutsvc "github.com/mmfactory/pizzeria-backend/internal/checkout"
	"github.com/mmfactory/pizzeria-backend/internal/menu"
	ordersvc "github.com/mmfactory/pizzeria-backend/internal/orders"
	"github.com/mmfactory/pizzeria-backend/internal/orders/feed"
	stripewebhook "github.com/mmfactory/pizzeria-backend/internal/webhooks/stripe"
	"github.com/mmfactory/pizzeria-backend/pkg/config"
	"github.com/mmfactory/pizzeria-backend/pkg/db"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
	"github.com/mmfactory/pizzeria-backend/pkg/metrics"
	"github.com/mmfactory/pizzeria-backend/pkg/redis"
	"github.com/mmfactory/pizzeria-backend/pkg/stripe"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics

	DB    db.Pinger
	Redis *redis.Client

	Menu     menu.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Admin    adminsvc.Service
	Feed     *feed.Hub

	StripeClient *stripe.Client
	Webhook      *stripewebhook.Service
	WebhookGuard *stripewebhook.IdempotencyGuard

	MetricsHandler http.Handler
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, params.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	metricsHandler := params.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(params.Webhook, params.StripeClient, params.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/menu", func(r chi.Router) {
			r.Get("/items", controllers.MenuItems(params.Menu, logg))
			r.Get("/extras", controllers.MenuExtras(params.Menu, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Cart.TTL, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(params.Cart, logg))
				r.Delete("/", controllers.CartClear(params.Cart, logg))
				r.Post("/items", controllers.CartAddItem(params.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(params.Cart, logg))
				r.Patch("/items/{itemId}/quantity", controllers.CartUpdateQuantity(params.Cart, logg))
				r.Patch("/items/{itemId}/extras", controllers.CartUpdateExtras(params.Cart, logg))
				r.Patch("/items/{itemId}/instructions", controllers.CartUpdateInstructions(params.Cart, logg))
				r.Put("/review", controllers.CartSetReview(params.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/pickup", controllers.CheckoutPickup(params.Checkout, logg))
				r.Post("/card", controllers.CheckoutCardSession(params.Checkout, logg))
			})
		})

		r.Get("/orders/{orderNumber}", controllers.OrderConfirmation(params.Orders, logg))
	})

	loginPolicy := middleware.NewLoginRateLimitPolicy(cfg.Admin.LoginWindow, cfg.Admin.LoginIPLimit)

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(loginPolicy, params.Redis, logg)).
			Post("/auth/login", controllers.AdminLogin(params.Admin, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.Admin, logg))
			r.Get("/auth/session", controllers.AdminSession())

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(params.Orders, logg))
				r.Get("/stream", controllers.AdminOrderStream(params.Feed, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(params.Orders, logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderStatus(params.Orders, logg))
				r.Patch("/{orderId}/pickup-time", controllers.AdminOrderPickupTime(params.Orders, logg))
				r.Patch("/{orderId}/notes", controllers.AdminOrderNotes(params.Orders, logg))
			})
		})
	})

	return r
}
