// catalogd aggregates job postings from external boards into a deduplicated
// catalog and keeps the vector index warm for matching. The real API surface
// lives in the gateway; this process exposes only a health endpoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"joblens/catalog-service/internal/cache"
	"joblens/catalog-service/internal/catalog"
	"joblens/catalog-service/internal/config"
	"joblens/catalog-service/internal/db"
	"joblens/catalog-service/internal/embedding"
	"joblens/catalog-service/internal/logger"
	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/ratelimit"
	"joblens/catalog-service/internal/scheduler"
	"joblens/catalog-service/internal/source"
	"joblens/catalog-service/internal/store"
	"joblens/catalog-service/internal/vector"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalogd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ─────────────────────────────────────────────────────────────
	var (
		jobs  store.JobStore
		index vector.Index
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		jobs = store.NewPostgres(pool)
		index = vector.NewPostgres(pool)
		log.Info("postgres connected")
	} else {
		jobs = store.NewMemory()
		index = vector.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory store and index")
	}

	// ── Cache & rate limiting ───────────────────────────────────────────────
	budget := ratelimit.Budget{PerMinute: cfg.RateLimitPerMinute, PerDay: cfg.RateLimitPerDay}
	var (
		pages   cache.Cache
		limiter ratelimit.Limiter
	)
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		pages = cache.NewRedis(rdb, cfg.CacheTTL)
		limiter = ratelimit.NewRedis(rdb, budget)
		log.Info("redis connected")
	} else {
		pages = cache.NewMemory(cfg.CacheTTL)
		limiter = ratelimit.NewMemory(budget)
		log.Warn("REDIS_URL not set, using in-memory cache and limiter")
	}

	// ── Embeddings ──────────────────────────────────────────────────────────
	var (
		embedder embedding.Embedder
		worker   *embedding.Worker
	)
	if cfg.GeminiAPIKey != "" {
		embedder, err = embedding.NewGemini(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
		if err != nil {
			return fmt.Errorf("gemini: %w", err)
		}
		worker = embedding.NewWorker(embedder, index, log, cfg.EmbedQueueSize)
		go worker.Run(ctx)
		log.Info("embedding worker started", zap.String("model", cfg.EmbedModel))
	} else {
		log.Warn("GEMINI_API_KEY not set, matching degrades to keyword ranking")
	}

	// ── Source adapters ─────────────────────────────────────────────────────
	var adapters []source.Adapter
	if cfg.AdzunaAppID != "" && cfg.AdzunaAppKey != "" {
		adzuna := source.NewAdzuna(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry)
		adapters = append(adapters, source.NewGuard(adzuna, limiter, log))
	} else {
		log.Warn("adzuna credentials not set, adapter disabled")
	}
	adapters = append(adapters, source.NewGuard(source.NewRemotive(), limiter, log))

	// ── Core services ───────────────────────────────────────────────────────
	var listener catalog.UpsertListener
	if worker != nil {
		listener = worker
	}
	svc := catalog.NewService(adapters, jobs, pages, listener, log)
	svc.SetSearchTimeout(cfg.SearchTimeout)

	sched := scheduler.New(svc, log, cfg.RefreshIntervalHours)
	for _, keywords := range cfg.SavedSearches {
		sched.Register(model.SearchQuery{Keywords: keywords})
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	// ── HTTP health endpoint ────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("stopped")
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "catalog-service",
		"version": version,
	})
}
