package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tourism-marketplace/internal/application/query"
	"tourism-marketplace/internal/application/services"
	"tourism-marketplace/internal/infrastructure/config"
	httpHandler "tourism-marketplace/internal/infrastructure/http"
	"tourism-marketplace/internal/infrastructure/telemetry"
	"tourism-marketplace/pkg/boundedquery"
	jwtutil "tourism-marketplace/pkg/jwt"
	applogger "tourism-marketplace/pkg/logger"
	"tourism-marketplace/pkg/middleware"
)

const serviceName = "tourism-marketplace-admin"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applogger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(telemetry.Config{
		Enabled:     cfg.TracingEnabled,
		ServiceName: serviceName,
		Environment: cfg.AppEnv,
		Output:      os.Stdout,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	stats, closeStore, err := openDatastore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("closing datastore", zap.Error(err))
		}
	}()

	// Dashboard aggregation
	policy := boundedquery.Policy{
		MaxRetries: cfg.Dashboard.MaxRetries,
		Timeout:    cfg.Dashboard.QueryTimeout,
		BaseDelay:  cfg.Dashboard.BackoffBase,
	}
	executor := boundedquery.NewExecutor(boundedquery.WithLogger(logger.Named("boundedquery")))
	dashboardHandler := query.NewAdminDashboardHandler(stats, executor,
		query.WithPolicy(policy),
		query.WithSystemicGroup(cfg.Dashboard.SystemicGroupName()),
		query.WithGroupConcurrency(cfg.Dashboard.GroupConcurrency),
		query.WithDashboardLogger(logger.Named("dashboard")),
	)

	if group := cfg.Dashboard.SystemicGroupName(); group != "" && !slices.Contains(dashboardHandler.GroupNames(), group) {
		return errors.New("DASHBOARD_SYSTEMIC_GROUP does not name a query group: " + group)
	}

	worstCase := dashboardHandler.WorstCaseLatency()
	logger.Info("dashboard latency bounds",
		zap.Duration("query_worst_case", policy.WorstCase()),
		zap.Duration("report_worst_case", worstCase),
		zap.Strings("groups", dashboardHandler.GroupNames()))
	if cfg.HTTP.RequestTimeout < worstCase {
		logger.Warn("REQUEST_TIMEOUT is shorter than the worst case report latency, slow datastores will answer 504",
			zap.Duration("request_timeout", cfg.HTTP.RequestTimeout),
			zap.Duration("report_worst_case", worstCase))
	}

	dashboardService := services.NewDashboardService(dashboardHandler, stats)
	dashboardController := httpHandler.NewHTTPAdminDashboardController(dashboardService)

	router := httpHandler.NewRouter(httpHandler.RouterConfig{
		Dashboard:      dashboardController,
		Tokens:         jwtutil.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		RateLimiter:    middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.TrustProxyHeaders),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("datastore", cfg.Datastore))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
