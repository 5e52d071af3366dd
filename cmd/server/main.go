package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	activityapp "github.com/friendaudit/backend/internal/application/activity"
	billingapp "github.com/friendaudit/backend/internal/application/billing"
	entitlementapp "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/domain/entitlement"
	"github.com/friendaudit/backend/internal/domain/subscription"
	"github.com/friendaudit/backend/internal/infrastructure/auth"
	"github.com/friendaudit/backend/internal/infrastructure/billing"
	"github.com/friendaudit/backend/internal/infrastructure/cache"
	"github.com/friendaudit/backend/internal/infrastructure/config"
	"github.com/friendaudit/backend/internal/infrastructure/logger"
	"github.com/friendaudit/backend/internal/infrastructure/migration"
	"github.com/friendaudit/backend/internal/infrastructure/persistence"
	"github.com/friendaudit/backend/internal/infrastructure/telemetry"
	"github.com/friendaudit/backend/internal/interfaces/http/handler"
	"github.com/friendaudit/backend/internal/interfaces/http/middleware"
	"github.com/friendaudit/backend/internal/interfaces/http/router"
	"github.com/friendaudit/backend/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

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
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, log)

	// Re-create the logger so entries are also exported through the OTEL bridge
	if tel.logs.IsEnabled() {
		otelCore := tel.logs.ZapCore(logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, otelCore); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FriendAudit entitlement service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(dbTracing.SlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := telemetry.InstrumentDB(db.DB, dbTracing, log); err != nil {
		log.Warn("Failed to instrument database", zap.Error(err))
	}

	if err := runMigrations(db, cfg.Database.Driver, log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)

	// Entitlement state store
	stateStore, closeStore, err := cache.NewStateStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create entitlement state store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Error closing state store", zap.Error(err))
		}
	}()

	entitlementMetrics, err := telemetry.NewEntitlementMetrics(tel.meters.Meter("friendaudit/entitlement"))
	if err != nil {
		log.Fatal("Failed to create entitlement metrics", zap.Error(err))
	}

	catalog, err := subscription.NewPlanCatalog(subscription.WithPriceIDs(map[entitlement.Tier]string{
		entitlement.TierTrial:   cfg.Stripe.TrialPriceID,
		entitlement.TierPro:     cfg.Stripe.ProPriceID,
		entitlement.TierPremium: cfg.Stripe.PremiumPriceID,
	})...)
	if err != nil {
		log.Fatal("Invalid plan catalog", zap.Error(err))
	}

	location, err := cfg.Entitlement.Location()
	if err != nil {
		log.Fatal("Invalid entitlement timezone", zap.Error(err))
	}

	// Application services
	fetcher := entitlementapp.NewSnapshotFetcher(customerRepo, subscriptionRepo, catalog, entitlementMetrics, log)
	counter := entitlementapp.NewUsageCounter(activityRepo, location, entitlementMetrics, log)
	serviceCfg := entitlementapp.DefaultServiceConfig()
	if cfg.Entitlement.ReadTimeout > 0 {
		serviceCfg.ReadTimeout = cfg.Entitlement.ReadTimeout
	}
	entitlementService := entitlementapp.NewService(fetcher, counter, stateStore, entitlementMetrics, log, serviceCfg)
	recorder := activityapp.NewRecorder(activityRepo, journalRepo, log)

	gateway, err := billing.NewStripeGateway(&billing.StripeConfig{
		SecretKey:  cfg.Stripe.SecretKey,
		IsTestMode: cfg.Stripe.IsTestMode,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize billing gateway", zap.Error(err))
	}

	checkoutCfg := billingapp.DefaultCheckoutServiceConfig()
	if cfg.App.BaseURL != "" {
		checkoutCfg.BaseURL = cfg.App.BaseURL
	}
	checkoutService := billingapp.NewCheckoutService(customerRepo, catalog, gateway, entitlementService, checkoutCfg, log)
	webhookService := billingapp.NewWebhookService(customerRepo, subscriptionRepo, entitlementService,
		billingapp.WebhookServiceConfig{
			WebhookSecret:            cfg.Stripe.WebhookSecret,
			IgnoreAPIVersionMismatch: cfg.Stripe.IgnoreAPIVersionMismatch,
		}, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// The otelgin span must exist before SpanEnricher and HTTPMetrics run
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(tel.meters.Meter("friendaudit/http"), log))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	healthChecks := map[string]handler.Pinger{"database": db}
	if p, ok := stateStore.(handler.Pinger); ok {
		healthChecks["redis"] = p
	}

	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		Verifier: auth.NewTokenVerifier(cfg.JWT),
		Logger:   log,
	})
	router.Mount(engine, router.Handlers{
		Entitlements: handler.NewEntitlementHandler(entitlementService),
		Activity:     handler.NewActivityHandler(recorder, entitlementService, log),
		Billing:      handler.NewBillingHandler(checkoutService, webhookService),
		Health:       handler.NewHealthHandler(healthChecks),
	}, jwtAuth, entitlementService, log)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

type telemetryProviders struct {
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts the OTEL providers and the profiler. Failures are
// logged and leave the affected signal disabled.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryProviders {
	tc := cfg.Telemetry
	exp := telemetry.Exporter{
		Endpoint:    tc.CollectorEndpoint,
		Insecure:    tc.Insecure,
		ServiceName: tc.ServiceName,
	}
	tel := &telemetryProviders{}

	var err error
	tel.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Exporter:      exp,
		Enabled:       tc.Enabled,
		SamplingRatio: tc.SamplingRatio,
	}, log)
	if err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		tel.tracer, _ = telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{}, log)
	}

	tel.meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Exporter:       exp,
		Enabled:        tc.Enabled,
		ExportInterval: tc.MetricsInterval,
	}, log)
	if err != nil {
		log.Warn("Metrics disabled", zap.Error(err))
		tel.meters, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}

	tel.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Exporter: exp,
		Enabled:  tc.Enabled && tc.LogsEnabled,
	}, log)
	if err != nil {
		log.Warn("Log export disabled", zap.Error(err))
		tel.logs = nil
	}

	tel.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeAddress,
		ApplicationName: tc.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Profiling disabled", zap.Error(err))
		tel.profiler = nil
	}
	if tel.profiler.IsEnabled() {
		tel.tracer.EnableSpanProfiles()
	}

	return tel
}

func (t *telemetryProviders) shutdown(ctx context.Context, log *zap.Logger) {
	steps := []struct {
		name string
		stop func() error
	}{
		{"profiler", t.profiler.Stop},
		{"logger provider", func() error { return t.logs.Shutdown(ctx) }},
		{"meter provider", func() error { return t.meters.Shutdown(ctx) }},
		{"tracer provider", func() error { return t.tracer.Shutdown(ctx) }},
	}
	for _, step := range steps {
		if err := step.stop(); err != nil {
			log.Warn("Failed to stop "+step.name, zap.Error(err))
		}
	}
}

func runMigrations(db *persistence.Database, driver string, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, driver, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB
	return m.Up()
}
