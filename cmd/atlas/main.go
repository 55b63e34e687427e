package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-crm/atlas-crm/internal/accounts"
	"github.com/atlas-crm/atlas-crm/internal/analytics"
	"github.com/atlas-crm/atlas-crm/internal/app"
	"github.com/atlas-crm/atlas-crm/internal/audit"
	"github.com/atlas-crm/atlas-crm/internal/auth"
	"github.com/atlas-crm/atlas-crm/internal/authz"
	"github.com/atlas-crm/atlas-crm/internal/customers"
	"github.com/atlas-crm/atlas-crm/internal/dashboard"
	"github.com/atlas-crm/atlas-crm/internal/orders"
	"github.com/atlas-crm/atlas-crm/internal/platform/cache"
	"github.com/atlas-crm/atlas-crm/internal/platform/db"
	"github.com/atlas-crm/atlas-crm/internal/products"
	"github.com/atlas-crm/atlas-crm/internal/sellers"
	"github.com/atlas-crm/atlas-crm/internal/shared"
	"github.com/atlas-crm/atlas-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(logger, auditRepo)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	gate := authz.Gate{Accounts: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, sessionManager, gate, auditService)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)
	accountsHandler := accounts.NewHandler(logger, accountsService, gate, auditService)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	customersHandler := customers.NewHandler(logger, customers.NewService(customers.NewRepository(dbpool)), gate, auditService, analyticsCache)
	sellersHandler := sellers.NewHandler(logger, sellers.NewService(sellers.NewRepository(dbpool)), gate, auditService, analyticsCache)
	ordersHandler := orders.NewHandler(logger, orders.NewService(orders.NewRepository(dbpool)), gate, auditService, analyticsCache)
	productsHandler := products.NewHandler(logger, products.NewService(products.NewRepository(dbpool)), gate)

	analyticsService := analytics.NewService(analytics.NewRepository(dbpool), analyticsCache)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, gate)

	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), analyticsCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, gate)

	auditHandler := audit.NewHandler(logger, auditService, gate)
	permissionsHandler := authz.NewPermissionsHandler(logger, gate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, gate.Require(authz.PermSystemConfig), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		AccountsHandler:    accountsHandler,
		CustomersHandler:   customersHandler,
		SellersHandler:     sellersHandler,
		OrdersHandler:      ordersHandler,
		ProductsHandler:    productsHandler,
		DashboardHandler:   dashboardHandler,
		AnalyticsHandler:   analyticsHandler,
		AuditHandler:       auditHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
