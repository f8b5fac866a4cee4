package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/libreria-austral/storefront-gateway/api/routes"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	upstreamClient, err := upstream.New(cfg.Upstream, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		os.Exit(1)
	}

	cartMirror, err := cart.NewRedisMirror(redisClient, cfg.Cart.MirrorTTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart mirror", err)
		os.Exit(1)
	}
	cartStore, err := cart.NewStore(cartMirror, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}

	sessionMirror, err := session.NewRedisMirror(redisClient, cfg.Cart.MirrorTTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create session mirror", err)
		os.Exit(1)
	}
	sessions, err := session.NewProvider(sessionMirror, cartStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create session provider", err)
		os.Exit(1)
	}

	catalogFetcher, err := catalog.NewFetcher(upstreamClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog fetcher", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(upstreamClient, sessions, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	submitter, err := orders.NewSubmitter(cartStore, sessions, upstreamClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order submitter", err)
		os.Exit(1)
	}

	adminService, err := backoffice.NewService(upstreamClient, sessions, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create back office service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront gateway")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			upstreamClient,
			sessions,
			cartStore,
			catalogFetcher,
			authService,
			submitter,
			adminService,
			registry,
			httpMetrics,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}
