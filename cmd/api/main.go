package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astro-checkout/internal/core/cache"
	"astro-checkout/internal/core/config"
	"astro-checkout/internal/core/httpclient"
	"astro-checkout/internal/core/logger"
	"astro-checkout/internal/core/server"
	cartadapter "astro-checkout/internal/features/cart/adapters"
	carthandler "astro-checkout/internal/features/cart/handler"
	cartservice "astro-checkout/internal/features/cart/service"
	orderadapter "astro-checkout/internal/features/orders/adapters"
	"astro-checkout/internal/features/orders/domain"
	orderhandler "astro-checkout/internal/features/orders/handler"
	orderservice "astro-checkout/internal/features/orders/service"
	promoadapter "astro-checkout/internal/features/promo/adapters"
	promoports "astro-checkout/internal/features/promo/ports"
	promoservice "astro-checkout/internal/features/promo/service"
	trackinghandler "astro-checkout/internal/features/tracking/handler"
	trackingservice "astro-checkout/internal/features/tracking/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// startupCheckTimeout bounds the dependency checks run before serving.
const startupCheckTimeout = 15 * time.Second

// @title Astro Checkout API
// @version 1.0
// @description Cart, pricing, checkout and order tracking for the Astro marketplace.
// @contact.name API Support
// @contact.email support@astro.example
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Redis
	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisAdapter.Close()

	// Initialize Marketplace client and gateways
	marketplace := httpclient.NewJSONClient(cfg.Marketplace.URL, cfg.Marketplace.APIKey, cfg.Marketplace.RequestTimeout())
	orderGateway := orderadapter.NewMarketplaceGateway(marketplace)
	paymentGateway := orderadapter.NewHTTPPaymentGateway(marketplace)

	// Verify dependencies
	if err := checkDependencies(ctx, redisAdapter, orderGateway); err != nil {
		l.Fatal("Startup check failed", zap.Error(err))
	}
	l.Info("Redis and marketplace connections verified")

	// Initialize Promo Validator
	var catalog promoports.Catalog
	switch cfg.Promo.Catalog {
	case config.PromoCatalogStatic:
		catalog = promoadapter.NewStaticCatalog(promoadapter.DefaultEntries()...)
	default:
		catalog = promoadapter.NewCachedCatalog(promoadapter.NewHTTPCatalog(marketplace), redisAdapter, cfg.Promo.CacheDuration())
	}
	l.Info("Promo catalog ready", zap.String("catalog", cfg.Promo.Catalog))
	validator := promoservice.NewValidator(catalog)

	// Initialize Cart Service & Handler
	cartService := cartservice.NewCartService(
		cartadapter.NewRedisCartRepository(redisAdapter),
		cartadapter.NewHTTPCartSource(marketplace),
		validator,
		cfg.Redis.SessionTTL(),
	)
	cartHdl := carthandler.NewCartHandler(cartService)

	// Initialize Order Services & Handler
	orderRepo := orderadapter.NewRedisOrderRepository(redisAdapter)
	orderSvc := orderservice.NewOrderService(orderRepo, orderGateway, domain.NewLifecycle())
	checkoutSvc := orderservice.NewCheckoutService(cartService, paymentGateway, orderGateway, orderRepo)
	orderHdl := orderhandler.NewOrderHandler(orderSvc, checkoutSvc)

	// Initialize Tracking Service & Handler
	trackingHdl := trackinghandler.NewTrackingHandler(trackingservice.NewTrackingService(orderSvc))

	srv := server.New(cfg)
	srv.Mount(cartHdl, orderHdl, trackingHdl)

	if err := srv.Run(ctx); err != nil {
		l.Fatal("Server failed", zap.Error(err))
	}
	l.Info("Server stopped")
}

// checkDependencies pings Redis and the marketplace concurrently.
func checkDependencies(ctx context.Context, c cache.Cache, gateway *orderadapter.MarketplaceGateway) error {
	ctx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Ping(gctx) })
	g.Go(func() error { return gateway.HealthCheck(gctx) })
	return g.Wait()
}
