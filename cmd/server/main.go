package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/codops/backend/docs"
	"github.com/codops/backend/internal/application/reconciliation"
	"github.com/codops/backend/internal/infrastructure/cache"
	"github.com/codops/backend/internal/infrastructure/config"
	"github.com/codops/backend/internal/infrastructure/logger"
	"github.com/codops/backend/internal/infrastructure/persistence"
	"github.com/codops/backend/internal/infrastructure/scheduler"
	"github.com/codops/backend/internal/infrastructure/telemetry"
	"github.com/codops/backend/internal/infrastructure/warehouse"
	"github.com/codops/backend/internal/interfaces/http/handler"
	"github.com/codops/backend/internal/interfaces/http/middleware"
	"github.com/codops/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

//	@title			COD Reconciliation API
//	@version		1.0
//	@description	Bridge between the order system and the cash-on-delivery warehouse: webhook intake, order sync and a live change feed
//
//	@contact.name	API Support
//	@contact.url	https://github.com/codops/backend
//
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}

	// The bootstrap logger reports on the telemetry pipelines themselves and
	// is never bridged to the collector
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting COD reconciliation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		Environment:       cfg.App.Env,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
		BasicAuthUser:     cfg.Telemetry.ProfilingAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingAuthPassword,
	}, bootLog)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	metrics, err := telemetry.NewReconciliationMetrics(meterProvider.Meter("cod-reconciliation"))
	if err != nil {
		log.Fatal("Failed to register reconciliation metrics", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSQL(cfg.App.Env != "production"))

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	dbSystem := "postgresql"
	if db.Driver() == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:   dbSystem,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}

	// Initialize repositories
	localOrderRepo := persistence.NewGormLocalOrderRepository(db.DB)
	externalOrderRepo := persistence.NewGormExternalOrderRepository(db.DB)

	dedup, err := cache.NewIdempotencyStore(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if err != nil {
		log.Fatal("Failed to initialize webhook de-duplication", zap.Error(err))
	}
	defer func() {
		if err := dedup.Close(); err != nil {
			log.Error("Error closing de-duplication store", zap.Error(err))
		}
	}()

	warehouseClient, err := warehouse.NewClient(cfg.Warehouse, log)
	if err != nil {
		log.Fatal("Failed to initialize warehouse client", zap.Error(err))
	}
	log.Info("Warehouse client ready", zap.String("mode", string(warehouseClient.Mode())))

	// Initialize application services
	eventLog := reconciliation.NewEventLog(reconciliation.DefaultEventLogCapacity)
	reconciler := reconciliation.NewReconciler(localOrderRepo, externalOrderRepo, log)
	webhookService := reconciliation.NewWebhookService(reconciliation.WebhookServiceConfig{
		Client:           warehouseClient,
		Reconciler:       reconciler,
		VerifySignatures: cfg.Warehouse.WebhookSecret != "",
		Dedup:            dedup,
		DedupTTL:         cfg.Warehouse.DedupTTL,
		EventLog:         eventLog,
		Metrics:          metrics,
		Logger:           log,
	})
	syncService := reconciliation.NewSyncService(reconciliation.SyncServiceConfig{
		Client:         warehouseClient,
		LocalOrders:    localOrderRepo,
		ExternalOrders: externalOrderRepo,
		Metrics:        metrics,
		Logger:         log,
	})
	changeFeed := reconciliation.NewChangeFeed(warehouseClient, cfg.Warehouse.FeedInterval, metrics, log)

	// Background pull so mirrors exist before the first webhook for an order
	syncConfig := scheduler.DefaultSyncSchedulerConfig()
	syncConfig.Enabled = cfg.Warehouse.SyncEnabled
	syncConfig.Interval = cfg.Warehouse.SyncInterval
	syncScheduler, err := scheduler.NewSyncScheduler(syncConfig, syncService, log.Named("sync_scheduler"))
	if err != nil {
		log.Fatal("Failed to create warehouse sync scheduler", zap.Error(err))
	}
	if err := syncScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start warehouse sync scheduler", zap.Error(err))
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	webhookHandler := handler.NewWarehouseWebhookHandler(webhookService, log)
	feedHandler := handler.NewWarehouseFeedHandler(changeFeed, handler.WithFeedLogger(log))
	warehouseHandler := handler.NewWarehouseHandler(syncService, eventLog, feedHandler, syncScheduler)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters: the request id must exist before the logger
	// and the tracing span read it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	})...)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	healthHandler.RegisterRoutes(&engine.RouterGroup)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(healthHandler).
		Register(webhookHandler).
		Register(warehouseHandler)
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// srv.Shutdown waits for open feed streams forever, so end them first;
	// in-flight webhooks keep their request context and finish normally
	feedHandler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := syncScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop warehouse sync scheduler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Failed to flush profiles", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Error("Failed to flush logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
