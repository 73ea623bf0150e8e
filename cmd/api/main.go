package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmfactory/pizzeria-backend/api/routes"
	adminsvc "github.com/mmfactory/pizzeria-backend/internal/admin"
	cartsvc "github.com/mmfactory/pizzeria-backend/internal/cart"
	checkoutsvc "github.com/mmfactory/pizzeria-backend/internal/checkout"
	"github.com/mmfactory/pizzeria-backend/internal/menu"
	"github.com/mmfactory/pizzeria-backend/internal/notifications"
	ordersvc "github.com/mmfactory/pizzeria-backend/internal/orders"
	"github.com/mmfactory/pizzeria-backend/internal/orders/feed"
	stripewebhook "github.com/mmfactory/pizzeria-backend/internal/webhooks/stripe"
	"github.com/mmfactory/pizzeria-backend/pkg/config"
	"github.com/mmfactory/pizzeria-backend/pkg/db"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
	"github.com/mmfactory/pizzeria-backend/pkg/mailer"
	"github.com/mmfactory/pizzeria-backend/pkg/metrics"
	"github.com/mmfactory/pizzeria-backend/pkg/migrate"
	"github.com/mmfactory/pizzeria-backend/pkg/redis"
	"github.com/mmfactory/pizzeria-backend/pkg/stripe"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to create stripe client", err)
		os.Exit(1)
	}

	mailClient, err := mailer.New(ctx, cfg.Mailer, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mail client", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewService(notifications.ServiceParams{
		Sender:  mailClient,
		Mailer:  cfg.Mailer,
		Metrics: orderMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	menuService := menu.NewService()

	cartService, err := cartsvc.NewService(cartsvc.NewRedisStore(redisClient, cfg.Cart.TTL), menuService)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	ordersRepo := ordersvc.NewRepository(dbClient.DB())

	ordersService, err := ordersvc.NewService(ordersRepo, notifier, orderMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:    cartService,
		Repo:     ordersRepo,
		Notifier: notifier,
		Payments: checkoutsvc.NewStripeClient(stripeClient),
		Metrics:  orderMetrics,
		Logger:   logg,
		BaseURL:  cfg.App.BaseURL,
		LeadTime: cfg.Checkout.PickupLeadTime,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	adminService, err := adminsvc.NewService(adminsvc.ServiceParams{
		Admin:  cfg.Admin,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create admin service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Checkout: checkoutService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe")
	if err != nil {
		logg.Error(ctx, "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	feedSource, err := feed.NewPostgresSource(cfg.DB.DSN, cfg.Feed, ordersRepo, logg, orderMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create order feed source", err)
		os.Exit(1)
	}
	feedHub := feed.NewHub(feedSource)
	go func() {
		if err := feedHub.Run(ctx); err != nil {
			logg.Error(ctx, "order feed stopped", err)
		}
	}()

	router := routes.NewRouter(routes.RouterParams{
		Config:  cfg,
		Logger:  logg,
		Metrics: orderMetrics,

		DB:    dbClient,
		Redis: redisClient,

		Menu:     menuService,
		Cart:     cartService,
		Checkout: checkoutService,
		Orders:   ordersService,
		Admin:    adminService,
		Feed:     feedHub,

		StripeClient: stripeClient,
		Webhook:      webhookService,
		WebhookGuard: webhookGuard,

		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}
