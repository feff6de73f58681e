package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/booking-wizard/internal/api/router"
	appconfig "github.com/wolfman30/booking-wizard/internal/config"
	httpmiddleware "github.com/wolfman30/booking-wizard/internal/http/middleware"
	"github.com/wolfman30/booking-wizard/internal/observability/metrics"
	"github.com/wolfman30/booking-wizard/internal/web"
	"github.com/wolfman30/booking-wizard/internal/wizard"
	"github.com/wolfman30/booking-wizard/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking wizard",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_store", cfg.SessionStore,
	)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, backend, closeStore, err := setupSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up session store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	metricsHandler, wizardMetrics := setupMetrics(cfg.MetricsEnabled)

	manager := wizard.NewManager(
		wizard.NewMachine(loc, nil),
		store,
		logger,
		wizard.WithRecorder(wizardMetrics),
	)
	wizardHandler := web.NewHandler(manager, logger, web.WithSecureCookie(cfg.SessionCookieSecure))

	r := router.New(&router.Config{
		Logger:         logger,
		WizardHandler:  wizardHandler,
		MetricsHandler: metricsHandler,
		SessionBackend: backend,
		ActionLimiter:  setupActionLimiter(cfg),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}

// setupMetrics builds a dedicated registry so /metrics only carries this
// service's series plus process and Go runtime collectors.
func setupMetrics(enabled bool) (http.Handler, *metrics.WizardMetrics) {
	if !enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewWizardMetrics(reg)
}

// setupActionLimiter returns nil when RATE_LIMIT_RPS is not positive.
func setupActionLimiter(cfg *appconfig.Config) *httpmiddleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// setupSessionStore picks the wizard session backend from config.
func setupSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (wizard.Store, router.Pinger, func(), error) {
	switch cfg.SessionStore {
	case "", "memory":
		store := wizard.NewMemoryStore(cfg.SessionTTL)
		sweepCtx, stop := context.WithCancel(ctx)
		go store.RunSweeper(sweepCtx, 0)
		return store, nil, stop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("redis session store connected", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		return wizard.NewRedisStore(client, cfg.SessionTTL), redisPinger{client: client}, closeFn, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}
