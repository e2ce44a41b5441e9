package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/selormtech/storefront-backend/api/controllers"
	"github.com/selormtech/storefront-backend/api/middleware"
	auditsvc "github.com/selormtech/storefront-backend/internal/audit"
	authsvc "github.com/selormtech/storefront-backend/internal/auth"
	couponsvc "github.com/selormtech/storefront-backend/internal/coupons"
	ordersvc "github.com/selormtech/storefront-backend/internal/orders"
	payoutsvc "github.com/selormtech/storefront-backend/internal/payouts"
	productsvc "github.com/selormtech/storefront-backend/internal/products"
	staffsvc "github.com/selormtech/storefront-backend/internal/staff"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	updatesvc "github.com/selormtech/storefront-backend/internal/updates"
	walletsvc "github.com/selormtech/storefront-backend/internal/wallet"
	zonesvc "github.com/selormtech/storefront-backend/internal/zones"
	"github.com/selormtech/storefront-backend/pkg/config"
	"github.com/selormtech/storefront-backend/pkg/db"
	"github.com/selormtech/storefront-backend/pkg/logger"
	"github.com/selormtech/storefront-backend/pkg/metrics"
	pkgredis "github.com/selormtech/storefront-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth     authsvc.Service
	Stores   storesvc.Service
	Products productsvc.Service
	Orders   ordersvc.Service
	Zones    zonesvc.Service
	Coupons  couponsvc.Service
	Staff    staffsvc.Service
	Wallet   walletsvc.Service
	Payouts  payoutsvc.Service
	Updates  updatesvc.Service
	Audit    auditsvc.Recorder
}

// NewRouter assembles the full HTTP surface: public storefronts, the auth
// endpoints, tenant admin APIs, and the platform-admin APIs. Everything
// passes the access gate; the gate decides per path class what an
// unauthenticated request sees.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	redisClient *pkgredis.Client,
	resolver middleware.IdentityResolver,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	// Hand the middlewares nil interfaces, not typed-nil pointers, so their
	// "no redis" fallbacks engage when the client is absent.
	var idemStore pkgredis.IdempotencyStore
	var limiterStore pkgredis.RateLimiterStore
	var cachePinger db.Pinger
	if redisClient != nil {
		idemStore = redisClient
		limiterStore = redisClient
		cachePinger = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
		middleware.AccessGate(cfg, resolver, logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cachePinger, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).
			Post("/login", controllers.Login(svcs.Auth, cfg, logg))
		r.With(middleware.Idempotency(idemStore, logg)).
			Post("/signup", controllers.Signup(svcs.Auth, cfg, logg))
		r.Post("/logout", controllers.Logout(svcs.Auth, cfg, logg))
		r.Get("/magic", controllers.MagicLogin(svcs.Auth, cfg, logg))
	})

	// Public storefront surface: browse and check out without a session.
	r.Route("/api/storefront/{storeSlug}", func(r chi.Router) {
		r.Get("/", controllers.GetStorefront(svcs.Stores, svcs.Products, svcs.Zones, logg))
		r.Get("/coupons/check", controllers.CheckCoupon(svcs.Coupons, svcs.Stores, logg))
		r.With(middleware.Idempotency(idemStore, logg)).
			Post("/orders", controllers.StorefrontCreateOrder(svcs.Orders, svcs.Stores, logg))
	})

	// Tenant admin API. The gate already authenticated the caller; the
	// tenant middleware pins them to the store in the route.
	r.Route("/{storeSlug}/admin/api", func(r chi.Router) {
		r.Use(middleware.TenantContext(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, svcs.Stores, logg))
			r.Post("/", controllers.CreateProduct(svcs.Products, svcs.Stores, logg))
			r.Post("/import", controllers.ImportProducts(svcs.Products, svcs.Stores, logg))
			r.Get("/{productID}", controllers.GetProduct(svcs.Products, svcs.Stores, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(svcs.Products, svcs.Stores, logg))
			r.Put("/{productID}/stock", controllers.UpdateStock(svcs.Products, svcs.Stores, logg))
			r.Post("/{productID}/archive", controllers.ArchiveProduct(svcs.Products, svcs.Stores, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(svcs.Products, svcs.Stores, logg))
		})

		r.Get("/export/inventory", controllers.ExportInventory(svcs.Products, svcs.Stores, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, svcs.Stores, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, svcs.Stores, logg))
			r.Post("/{orderID}/complete", controllers.CompleteOrder(svcs.Orders, svcs.Stores, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(svcs.Orders, svcs.Stores, logg))
		})

		r.Route("/zones", func(r chi.Router) {
			r.Get("/", controllers.ListZones(svcs.Zones, svcs.Stores, logg))
			r.Post("/", controllers.CreateZone(svcs.Zones, svcs.Stores, logg))
			r.Put("/{zoneID}", controllers.UpdateZone(svcs.Zones, svcs.Stores, logg))
			r.Delete("/{zoneID}", controllers.DeleteZone(svcs.Zones, svcs.Stores, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.ListCoupons(svcs.Coupons, svcs.Stores, logg))
			r.Post("/", controllers.CreateCoupon(svcs.Coupons, svcs.Stores, logg))
			r.Delete("/{couponID}", controllers.DeleteCoupon(svcs.Coupons, svcs.Stores, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", controllers.ListStaff(svcs.Staff, svcs.Stores, logg))
			r.Post("/", controllers.CreateStaff(svcs.Staff, svcs.Stores, logg))
			r.Delete("/{staffID}", controllers.RemoveStaff(svcs.Staff, svcs.Stores, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(svcs.Stores, logg))
			r.Patch("/", controllers.UpdateSettings(svcs.Stores, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.GetWalletSummary(svcs.Wallet, svcs.Stores, logg))
			r.Get("/transactions", controllers.ListWalletTransactions(svcs.Wallet, svcs.Stores, logg))
		})

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.ListPayouts(svcs.Payouts, svcs.Stores, logg))
			r.Post("/", controllers.RequestPayout(svcs.Payouts, svcs.Stores, logg))
			r.Get("/{payoutID}", controllers.GetPayout(svcs.Payouts, svcs.Stores, logg))
		})

		r.Get("/audit", controllers.ListStoreAudit(svcs.Audit, svcs.Stores, logg))
		r.Get("/updates", controllers.ListUpdates(svcs.Updates, logg))
	})

	r.Route("/platform-admin/api", func(r chi.Router) {
		r.Use(middleware.RequirePlatformAdmin(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.PlatformListStores(svcs.Stores, logg))
			r.Put("/{storeID}/verification", controllers.PlatformSetVerification(svcs.Stores, logg))
			r.Put("/{storeID}/status", controllers.PlatformSetStoreStatus(svcs.Stores, logg))
			r.Put("/{storeID}/tier", controllers.PlatformChangeTier(svcs.Stores, logg))
		})

		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", controllers.PlatformListPendingPayouts(svcs.Payouts, logg))
			r.Post("/{payoutID}/approve", controllers.PlatformApprovePayout(svcs.Payouts, logg))
			r.Post("/{payoutID}/reject", controllers.PlatformRejectPayout(svcs.Payouts, logg))
		})

		r.Route("/updates", func(r chi.Router) {
			r.Get("/", controllers.ListUpdates(svcs.Updates, logg))
			r.Post("/", controllers.PlatformBroadcastUpdate(svcs.Updates, logg))
		})

		r.Get("/audit", controllers.PlatformListAudit(svcs.Audit, logg))
	})

	return r
}
