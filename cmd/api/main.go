package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/hausservice-booking/internal/api/router"
	"github.com/wolfman30/hausservice-booking/internal/app/bootstrap"
	appconfig "github.com/wolfman30/hausservice-booking/internal/config"
	"github.com/wolfman30/hausservice-booking/internal/consent"
	httpmiddleware "github.com/wolfman30/hausservice-booking/internal/http/middleware"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/internal/observability/metrics"
	"github.com/wolfman30/hausservice-booking/internal/webcal"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting hausservice booking server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.Timezone,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.startBackground(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

type application struct {
	handler     http.Handler
	limiter     *httpmiddleware.RateLimiter
	sessions    webcal.SessionStore
	leadService *leads.Service
	redis       *redis.Client
	pool        *pgxpool.Pool
}

// startBackground runs the periodic pruners until ctx ends.
func (a *application) startBackground(ctx context.Context) {
	go a.limiter.Run(ctx, time.Minute)
	if mem, ok := a.sessions.(*webcal.MemorySessionStore); ok {
		go mem.Run(ctx, time.Minute)
	}
}

// Close waits for pending lead notifications, then releases connections.
func (a *application) Close() {
	if a.leadService != nil {
		a.leadService.Wait()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// buildApp wires stores, sinks and handlers. Every external dependency is
// optional: without Redis, Postgres or DynamoDB the server runs on
// in-process stores.
func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*application, error) {
	metricsHandler, bookingMetrics, leadMetrics := setupMetrics()

	app := &application{
		redis: bootstrap.BuildRedisClient(ctx, cfg, logger, true),
		pool:  bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger),
	}

	remote, err := bootstrap.BuildRemoteSink(ctx, cfg, app.pool, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	local := leads.NewLocalSink(bootstrap.BuildLeadListStore(app.redis), logger)
	opts := []leads.ServiceOption{
		leads.WithMetrics(leadMetrics),
		leads.WithRemoteTimeout(cfg.RemoteSinkTimeout),
	}
	if remote != nil {
		opts = append(opts, leads.WithRemote(remote))
		logger.Info("remote lead sink enabled", "sink", remote.Name())
	}
	if notifier := bootstrap.BuildLeadNotifier(ctx, cfg, logger); notifier != nil {
		opts = append(opts, leads.WithNotifier(notifier))
	}
	app.leadService = leads.NewService(local, logger, opts...)

	// Admin views read the remote store too, so leads that never hit the
	// local list are still visible.
	var lister leads.Lister = local
	if remoteLister, ok := remote.(leads.Lister); ok {
		lister = leads.NewMergedLister(logger, remoteLister, local)
	}

	app.sessions = bootstrap.BuildSessionStore(app.redis, cfg.SessionTTL)
	bookingHandler := webcal.NewHandler(webcal.Config{
		Store:         app.sessions,
		Location:      cfg.Location(),
		HandoffPath:   cfg.HandoffPath,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.IsProduction(),
		Metrics:       bookingMetrics,
		Logger:        logger,
	})

	app.limiter = httpmiddleware.NewRateLimiter(cfg.LeadRatePerSecond, cfg.LeadRateBurst)
	app.handler = router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		LeadsHandler:       leads.NewHandler(app.leadService, lister, cfg.ContactSuccessRedirect, logger),
		ConsentHandler:     consent.NewHandler(cfg.IsProduction(), logger),
		LeadLimiter:        app.limiter,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ReadinessChecks:    readinessChecks(app.redis, app.pool),
	})
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin lead routes disabled")
	}
	return app, nil
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return handler, metrics.NewBookingMetrics(reg), metrics.NewLeadMetrics(reg)
}

func readinessChecks(redisClient *redis.Client, pool *pgxpool.Pool) map[string]router.ReadinessCheck {
	checks := make(map[string]router.ReadinessCheck)
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	return checks
}
