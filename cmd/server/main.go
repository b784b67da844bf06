package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petition/internal/platform/config"
	"petition/internal/platform/httpserver"
	"petition/internal/platform/logger"
	"petition/internal/platform/metrics"
	"petition/internal/platform/postgres"
	platformredis "petition/internal/platform/redis"
	"petition/internal/signatory/cache"
	"petition/internal/signatory/detector"
	"petition/internal/signatory/handler"
	"petition/internal/signatory/service"
	"petition/internal/signatory/store"
	"petition/internal/verification"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	// The store is process-wide state with explicit lifecycle: acquired once
	// here, held for the service's lifetime, released at shutdown.
	var sigStore store.Store
	var closeStore func() error
	pingStore := func(context.Context) error { return nil }
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err.Error())
			os.Exit(1)
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure schema", "error", err.Error())
			os.Exit(1)
		}
		sigStore = pg
		closeStore = db.Close
		pingStore = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory signature store")
		sigStore = store.NewInMemory()
		closeStore = func() error { return nil }
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	statsCache := cache.NewStats(redisClient, cfg.StatsCacheTTL, log)

	det, err := detector.New(sigStore, detector.WithLogger(log))
	if err != nil {
		log.Error("failed to build detector", "error", err.Error())
		os.Exit(1)
	}

	verifier := verification.NewTurnstile(cfg.Verification, log)

	svc, err := service.New(sigStore, det, verifier,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithStatsCache(statsCache),
	)
	if err != nil {
		log.Error("failed to build service", "error", err.Error())
		os.Exit(1)
	}

	router := chi.NewRouter()
	handler.New(svc, log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pingStore(r.Context()); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting petition intake service", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := closeStore(); err != nil {
		log.Error("failed to close store", "error", err.Error())
	}
}
