package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/laundrydesk/backend/internal/application/ledger"
	"github.com/laundrydesk/backend/internal/domain/ledger"
	"github.com/laundrydesk/backend/internal/infrastructure/auth"
	"github.com/laundrydesk/backend/internal/infrastructure/cache"
	"github.com/laundrydesk/backend/internal/infrastructure/config"
	"github.com/laundrydesk/backend/internal/infrastructure/event"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/persistence"
	"github.com/laundrydesk/backend/internal/infrastructure/telemetry"
	"github.com/laundrydesk/backend/internal/interfaces/http/handler"
	"github.com/laundrydesk/backend/internal/interfaces/http/middleware"
	"github.com/laundrydesk/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	otelProviders, err := telemetry.Start(ctx, telemetry.Config{
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Traces:            cfg.Telemetry.Enabled,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		Metrics:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		Logs:              cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		LogsLevel:         logger.ParseLevel(cfg.Telemetry.LogsLevel),
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := otelProviders.Bridge(baseLog)
	defer func() { _ = log.Sync() }()

	log.Info("Starting payment ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(otelProviders.Meter("laundrydesk/ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	faults, err := telemetry.NewFaultReporter(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.App.Env,
		Release:          cfg.App.Version,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	}, log, ledgerMetrics)
	if err != nil {
		log.Fatal("Failed to initialize Sentry", zap.Error(err))
	}

	// Database
	db, err := persistence.OpenDatabase(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Balance cache
	balanceCache, cacheCloser, err := cache.NewBalanceCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to create balance cache", zap.Error(err))
	}
	defer func() { _ = cacheCloser.Close() }()

	// Event bus: cache invalidation and ledger metrics run after commit
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(cache.NewBalanceInvalidationHandler(balanceCache, log))
	eventBus.Subscribe(event.NewLedgerMetricsHandler(ledgerMetrics))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Ledger services
	sequences := persistence.NewGormSequenceService(db.DB,
		map[string]string{ledger.SequenceScopePayment: cfg.Ledger.PaymentCodePrefix},
		cfg.Ledger.PaymentCodeDigits,
	)
	deps := ledgerapp.Dependencies{
		Store:   persistence.NewGormLedgerStore(db.DB, sequences),
		Events:  eventBus,
		Faults:  faults,
		Metrics: ledgerMetrics,
	}
	queryService := ledgerapp.NewQueryService(ledgerapp.QueryRepositories{
		Orders:   persistence.NewGormOrderRepository(db.DB),
		Payments: persistence.NewGormPaymentRepository(db.DB),
		Entries:  persistence.NewGormAllocationEntryRepository(db.DB),
		Views:    persistence.NewGormPaymentQueryRepository(db.DB),
	}, balanceCache, cfg.Ledger.DefaultPageSize, cfg.Ledger.MaxPageSize)

	ledgerHandler := handler.NewLedgerHandler(
		ledgerapp.NewAllocationService(deps),
		ledgerapp.NewReversalService(deps),
		ledgerapp.NewAdminService(deps, cfg.Ledger.HardDeleteEnabled),
		queryService,
	)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	var httpMeter metric.Meter
	if otelProviders.MetricsEnabled() {
		httpMeter = otelProviders.Meter("http.server")
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	if faults.Enabled() {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, otelProviders.TracingEnabled()),
		middleware.SpanOutcome(),
		middleware.HTTPMetrics(httpMeter, log),
		middleware.Secure(cfg.HTTP.HSTSMaxAge),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisCache, ok := balanceCache.(*cache.RedisBalanceCache); ok {
		checks["redis"] = redisCache.Ping
	}
	engine.GET("/health", handler.NewSystemHandler(cfg.App.Version, checks).Health)

	router.Setup(engine, ledgerHandler,
		middleware.Authenticate(auth.NewJWTService(cfg.JWT), log),
		middleware.SpanCaller(),
	)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	faults.Flush(2 * time.Second)
	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
