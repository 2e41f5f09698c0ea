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

	"github.com/minhvu-dev/accountshop-backend/api/routes"
	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/internal/auth"
	"github.com/minhvu-dev/accountshop-backend/internal/cart"
	"github.com/minhvu-dev/accountshop-backend/internal/checkout"
	"github.com/minhvu-dev/accountshop-backend/internal/orders"
	"github.com/minhvu-dev/accountshop-backend/internal/payments"
	"github.com/minhvu-dev/accountshop-backend/internal/stats"
	"github.com/minhvu-dev/accountshop-backend/internal/users"
	"github.com/minhvu-dev/accountshop-backend/internal/wishlist"
	"github.com/minhvu-dev/accountshop-backend/pkg/auth/session"
	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	"github.com/minhvu-dev/accountshop-backend/pkg/db"
	"github.com/minhvu-dev/accountshop-backend/pkg/env"
	"github.com/minhvu-dev/accountshop-backend/pkg/logger"
	"github.com/minhvu-dev/accountshop-backend/pkg/metrics"
	"github.com/minhvu-dev/accountshop-backend/pkg/migrate"
	"github.com/minhvu-dev/accountshop-backend/pkg/redis"
	"github.com/minhvu-dev/accountshop-backend/pkg/vault"
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

	credentialVault, err := vault.New(cfg.Vault)
	if err != nil {
		logg.Error(context.Background(), "failed to open credential vault", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	shopMetrics := metrics.NewShopMetrics(prometheus.DefaultRegisterer)

	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	accountRepo := accounts.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	wishlistRepo := wishlist.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	paymentRepo := payments.NewRepository(gdb)

	auditService, err := audit.NewService(audit.NewRepository(gdb))
	if err != nil {
		fatal(logg, "failed to create audit service", err)
	}
	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Audits:         auditService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}
	accountService, err := accounts.NewService(accountRepo, dbClient, auditService, credentialVault)
	if err != nil {
		fatal(logg, "failed to create account service", err)
	}
	cartService, err := cart.NewService(cartRepo, accountRepo, dbClient, auditService)
	if err != nil {
		fatal(logg, "failed to create cart service", err)
	}
	wishlistService, err := wishlist.NewService(wishlistRepo, accountRepo)
	if err != nil {
		fatal(logg, "failed to create wishlist service", err)
	}
	paymentService, err := payments.NewService(paymentRepo, dbClient, auditService, cfg.Payment)
	if err != nil {
		fatal(logg, "failed to create payment service", err)
	}
	orderService, err := orders.NewService(orderRepo, accountRepo, dbClient, auditService, credentialVault, shopMetrics)
	if err != nil {
		fatal(logg, "failed to create order service", err)
	}
	checkoutService, err := checkout.NewService(dbClient, cartRepo, accountRepo, orderRepo, paymentService, auditService, shopMetrics)
	if err != nil {
		fatal(logg, "failed to create checkout service", err)
	}
	userService, err := users.NewService(userRepo)
	if err != nil {
		fatal(logg, "failed to create user service", err)
	}
	statsService, err := stats.NewService(gdb)
	if err != nil {
		fatal(logg, "failed to create stats service", err)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionChecker: sessionManager,
			Auth:           authService,
			Users:          userService,
			Accounts:       accountService,
			Cart:           cartService,
			Wishlist:       wishlistService,
			Checkout:       checkoutService,
			Orders:         orderService,
			Payments:       paymentService,
			Audit:          auditService,
			Stats:          statsService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
