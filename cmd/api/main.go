package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"

	"github.com/selormtech/storefront-backend/api/middleware"
	"github.com/selormtech/storefront-backend/api/routes"
	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/internal/auth"
	"github.com/selormtech/storefront-backend/internal/coupons"
	"github.com/selormtech/storefront-backend/internal/orders"
	"github.com/selormtech/storefront-backend/internal/payouts"
	"github.com/selormtech/storefront-backend/internal/products"
	"github.com/selormtech/storefront-backend/internal/staff"
	"github.com/selormtech/storefront-backend/internal/stores"
	"github.com/selormtech/storefront-backend/internal/updates"
	"github.com/selormtech/storefront-backend/internal/wallet"
	"github.com/selormtech/storefront-backend/internal/zones"
	"github.com/selormtech/storefront-backend/pkg/config"
	"github.com/selormtech/storefront-backend/pkg/db"
	"github.com/selormtech/storefront-backend/pkg/identity"
	"github.com/selormtech/storefront-backend/pkg/logger"
	"github.com/selormtech/storefront-backend/pkg/metrics"
	"github.com/selormtech/storefront-backend/pkg/migrate"
	"github.com/selormtech/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	ctx := context.Background()
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))

	var dbClient *db.Client
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		client, connErr := db.New(ctx, cfg.DB, logg)
		if connErr != nil {
			logg.Warn(ctx, "database not ready, retrying")
			return retry.RetryableError(connErr)
		}
		dbClient = client
		return nil
	}); err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		client, connErr := redis.New(ctx, cfg.Redis)
		if connErr != nil {
			logg.Warn(ctx, "redis not ready, retrying")
			return retry.RetryableError(connErr)
		}
		redisClient = client
		return nil
	}); err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	provider, err := identity.NewProvider(redisClient, cfg.Identity)
	if err != nil {
		logg.Error(ctx, "failed to create identity provider", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	recorder, err := audit.NewRecorder(
		audit.NewRepository(dbClient.DB()),
		logg,
		func(ctx context.Context) (uuid.UUID, *uuid.UUID, bool) {
			p, ok := middleware.PrincipalFromContext(ctx)
			if !ok {
				return uuid.Nil, nil, false
			}
			return p.UserID, p.StoreID, true
		},
	)
	if err != nil {
		logg.Error(ctx, "failed to create audit recorder", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, dbClient, provider, recorder, ledgerMetrics)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, provider, httpMetrics, registry, svcs)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(
	cfg *config.Config,
	dbClient *db.Client,
	provider *identity.Provider,
	recorder audit.Recorder,
	ledgerMetrics *metrics.LedgerMetrics,
) (routes.Services, error) {
	conn := dbClient.DB()

	authService, err := auth.NewService(conn, cfg, provider, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	storeService, err := stores.NewService(conn, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	productService, err := products.NewService(products.NewRepository(conn), recorder)
	if err != nil {
		return routes.Services{}, err
	}
	orderService, err := orders.NewService(conn, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	zoneService, err := zones.NewService(conn, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	couponService, err := coupons.NewService(conn, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	staffService, err := staff.NewService(conn, cfg.Password, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	walletService, err := wallet.NewService(wallet.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	payoutService, err := payouts.NewService(conn, payouts.NewRepository(conn), payouts.NewWalletRepository(conn), payouts.NewBalanceRepository(conn), recorder, ledgerMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	updateService, err := updates.NewService(conn, recorder)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:     authService,
		Stores:   storeService,
		Products: productService,
		Orders:   orderService,
		Zones:    zoneService,
		Coupons:  couponService,
		Staff:    staffService,
		Wallet:   walletService,
		Payouts:  payoutService,
		Updates:  updateService,
		Audit:    recorder,
	}, nil
}
