package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sduquej/mercadito-backend/api/routes"
	"github.com/sduquej/mercadito-backend/internal/bundles"
	"github.com/sduquej/mercadito-backend/internal/cart"
	"github.com/sduquej/mercadito-backend/internal/products"
	"github.com/sduquej/mercadito-backend/internal/rewards"
	"github.com/sduquej/mercadito-backend/internal/roll"
	"github.com/sduquej/mercadito-backend/internal/settings"
	"github.com/sduquej/mercadito-backend/internal/shipping"
	"github.com/sduquej/mercadito-backend/pkg/config"
	"github.com/sduquej/mercadito-backend/pkg/db"
	"github.com/sduquej/mercadito-backend/pkg/logger"
	"github.com/sduquej/mercadito-backend/pkg/metrics"
	"github.com/sduquej/mercadito-backend/pkg/migrate"
	"github.com/sduquej/mercadito-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	rollMetrics := metrics.NewRollMetrics(registry)

	rewardsService, err := rewards.NewService(settings.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}

	roller, err := roll.NewRoller()
	if err != nil {
		logg.Error(context.Background(), "failed to seed dice roller", err)
		os.Exit(1)
	}

	rollService, err := roll.NewService(roll.Options{
		Attempts: roll.NewRepository(dbClient.DB()),
		Config:   rewardsService,
		Roller:   roller,
		Locker:   redisClient,
		Metrics:  rollMetrics,
		Logger:   logg,
		Cooldown: cfg.Roll.CooldownWindow,
		LockTTL:  cfg.Roll.LockTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create roll service", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	bundleRepo := bundles.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), productRepo, bundleRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	shippingService, err := shipping.NewService(shipping.NewRepository(dbClient.DB()), cfg.Cart.FreeShippingThresholdAmount())
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Registry:    registry,
			RollService: rollService,
			CartService: cartService,
			Shipping:    shippingService,
			Rewards:     rewardsService,
			Products:    productRepo,
			Bundles:     bundleRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
