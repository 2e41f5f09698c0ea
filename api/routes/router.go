package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhvu-dev/accountshop-backend/api/controllers"
	"github.com/minhvu-dev/accountshop-backend/api/middleware"
	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/internal/auth"
	"github.com/minhvu-dev/accountshop-backend/internal/cart"
	checkoutsvc "github.com/minhvu-dev/accountshop-backend/internal/checkout"
	"github.com/minhvu-dev/accountshop-backend/internal/orders"
	"github.com/minhvu-dev/accountshop-backend/internal/payments"
	"github.com/minhvu-dev/accountshop-backend/internal/stats"
	"github.com/minhvu-dev/accountshop-backend/internal/users"
	"github.com/minhvu-dev/accountshop-backend/internal/wishlist"
	"github.com/minhvu-dev/accountshop-backend/pkg/auth/session"
	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	"github.com/minhvu-dev/accountshop-backend/pkg/db"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
	"github.com/minhvu-dev/accountshop-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker

	Auth     auth.Service
	Users    users.Service
	Accounts accounts.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Payments payments.Service
	Audit    audit.Service
	Stats    stats.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentifierLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).
			Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/", controllers.CatalogList(deps.Accounts, logg))
		r.Get("/{accountId}", controllers.CatalogDetail(deps.Accounts, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))

		r.Get("/me", controllers.Me(deps.Users, logg))
		r.Patch("/me", controllers.MeUpdate(deps.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/{accountId}", controllers.CartAdd(deps.Cart, logg))
			r.Delete("/{accountId}", controllers.CartRemove(deps.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/{accountId}", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/{accountId}", controllers.WishlistRemove(deps.Wishlist, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/{orderId}/payment", controllers.OrderPaymentInstructions(deps.Orders, deps.Payments, logg))
			r.Post("/{orderId}/confirm-payment", controllers.OrderConfirmPayment(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
			r.Get("/{orderId}/credentials", controllers.OrderCredentials(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.RequireRole(enums.RoleSupport, logg))

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", controllers.AdminAccountCreate(deps.Accounts, logg))
			r.Patch("/{accountId}", controllers.AdminAccountUpdate(deps.Accounts, logg))
			r.Delete("/{accountId}", controllers.AdminAccountDelete(deps.Accounts, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/{orderId}/credentials", controllers.OrderCredentials(deps.Orders, logg))
			r.Post("/{orderId}/complete", controllers.AdminOrderComplete(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
			r.Patch("/{orderId}/notes", controllers.AdminOrderAnnotate(deps.Orders, logg))
		})

		r.Route("/payment-settings", func(r chi.Router) {
			r.Get("/", controllers.AdminPaymentSettings(deps.Payments, logg))
			r.Put("/", controllers.AdminPaymentSettingsUpdate(deps.Payments, logg))
		})

		r.Get("/dashboard", controllers.AdminDashboard(deps.Stats, logg))

		r.With(middleware.RequireRole(enums.RoleAdmin, logg)).
			Get("/audit-logs", controllers.AdminAuditList(deps.Audit, logg))
	})

	return r
}
