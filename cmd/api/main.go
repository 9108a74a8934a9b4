package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/checkout"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/http/handlers"
	"github.com/skypark/bookings/internal/http/middleware"
	"github.com/skypark/bookings/internal/payments"
	"github.com/skypark/bookings/internal/platform/mailer"
	"github.com/skypark/bookings/internal/pricing"
	"github.com/skypark/bookings/internal/promo"
	"github.com/skypark/bookings/internal/repo/postgres"
	"github.com/skypark/bookings/pkg/bookingref"
	"github.com/skypark/bookings/pkg/cache"
	"github.com/skypark/bookings/pkg/config"
	"github.com/skypark/bookings/pkg/database"
	"github.com/skypark/bookings/pkg/events"
	"github.com/skypark/bookings/pkg/logger"
	mw "github.com/skypark/bookings/pkg/middleware"
)

func main() {
	cfg := config.Load()
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to event bus
	var bus events.Publisher = events.NopBus{}
	if cfg.NATS.Enabled {
		nb, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		bus = nb
	}
	defer bus.Close()

	// Idempotency cache is optional; without Redis the header is ignored.
	var idem mw.IdempotencyStore
	if store, err := cache.NewRedisStore(ctx, cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, idempotency cache disabled", "error", err)
	} else {
		defer store.Close()
		idem = store
	}

	loc, err := time.LoadLocation(cfg.Park.Timezone)
	if err != nil {
		logger.Error("Invalid park timezone", "timezone", cfg.Park.Timezone, "error", err)
		os.Exit(1)
	}

	refs, err := bookingref.New(cfg.Park.BookingRefSalt)
	if err != nil {
		logger.Error("Failed to init booking refs", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	bookingRepo := postgres.NewBookingRepo(pool)
	promoRepo := postgres.NewPromoRepo(pool)
	webhookRepo := postgres.NewWebhookEventRepo(pool)
	rateLimitRepo := postgres.NewRateLimitRepo(pool)

	var src catalog.Source = catalog.NewStaticSource(catalog.Static())
	if cfg.Park.CatalogSource == "db" {
		src = catalog.NewRepoSource(postgres.NewCatalogRepo(pool))
	}
	cat := catalog.NewCached(src, cfg.Park.CatalogTTL)
	openTime := domain.NewOpenTimeSet(cfg.Park.OpenTimePackages...)

	// Initialize services
	promoService := promo.NewService(promoRepo)
	checkoutService := checkout.NewService(checkout.Deps{
		Bookings: bookingRepo,
		Catalog:  cat,
		Promos:   promoService,
		Payments: payments.NewStripeGateway(cfg.Stripe),
		Events:   bus,
		Webhooks: webhookRepo,
		Mailer:   mailer.New(cfg.Email),
		Refs:     refs,

		OpenTime: openTime,
		Rates: pricing.Rates{
			PrivateTransfer: cfg.Park.PrivateTransferPrice,
			NonPlayer:       cfg.Park.NonPlayerPrice,
		},
		Location:  loc,
		Currency:  cfg.Stripe.Currency,
		PublicURL: cfg.Server.PublicURL,
	})

	// Initialize handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, promoService, openTime)
	checkoutHandler.PromoLimit = middleware.NewRateLimiter(rateLimitRepo, middleware.RateLimitConfig{
		Scope:    "validate-promo",
		Requests: cfg.Park.PromoRateLimit,
		Window:   cfg.Park.PromoRateWindow,
	}).Middleware()

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.Recover)
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("bookings"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Idempotent-Replayed"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", handlers.NewCatalogHandler(cat, openTime).Routes())

		r.Route("/checkout", func(r chi.Router) {
			if idem != nil {
				r.Use(mw.Idempotency(idem, cfg.Redis.IdempotencyTTL))
			}
			r.Mount("/", checkoutHandler.Routes())
		})

		r.Mount("/bookings", handlers.NewBookingsHandler(checkoutService).Routes())
		r.Mount("/webhooks", handlers.NewWebhookHandler(checkoutService).Routes())

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.Auth.JWTSecret))
			r.Mount("/", handlers.NewAdminHandler(checkoutService, promoService).Routes())
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down bookings service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Bookings service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting bookings service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Bookings service error", "error", err)
		os.Exit(1)
	}
}
