package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/auth"
	"github.com/ventdepot/backend/internal/infrastructure/cache"
	"github.com/ventdepot/backend/internal/infrastructure/config"
	"github.com/ventdepot/backend/internal/infrastructure/logger"
	"github.com/ventdepot/backend/internal/infrastructure/persistence"
	"github.com/ventdepot/backend/internal/infrastructure/telemetry"
	"github.com/ventdepot/backend/internal/interfaces/http/handler"
	"github.com/ventdepot/backend/internal/interfaces/http/middleware"
	"github.com/ventdepot/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set VENTDEPOT_* directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.ConfigFrom(cfg.Telemetry), baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := logger.Tee(baseLog, providers.Logs.Core(logger.ParseLevel(cfg.Log.Level)))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting bin allocator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("demand_mode", string(cfg.Warehouse.ParsedDemandMode())),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories and service
	binRepo := persistence.NewGormBinRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)

	allocationService := appwarehouse.NewAllocationService(
		persistence.NewGormTransactionScope(db.DB),
		binRepo,
		orderRepo,
		allocationRepo,
		appwarehouse.ServiceConfig{DemandMode: cfg.Warehouse.ParsedDemandMode()},
		log,
	)
	allocationMetrics, err := telemetry.NewAllocationMetrics(providers.Meter.Meter("ventdepot/allocation"))
	if err != nil {
		log.Fatal("Failed to create allocation metrics", zap.Error(err))
	}
	allocationService.SetMetricsRecorder(allocationMetrics)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(providers.Meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	// Order matters: request id before logging, tracing before anything that annotates spans
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(httpMetrics)
	engine.Use(middleware.SecureWithConfig(middleware.SecurityConfigFor(cfg.IsProduction())))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	healthHandler := handler.NewHealthHandler(db)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/api/v1/health", healthHandler.Health)

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	r := router.NewRouter(engine,
		router.WithAPIMiddleware(
			middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
			middleware.TracingAttributeInjector(),
		),
	)
	r.Register(router.WarehouseRoutes(
		handler.NewWarehouseHandler(allocationService),
		idempotencyStore,
		cfg.Warehouse.IdempotencyTTL,
	))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
