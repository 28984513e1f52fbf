package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/annuksk07-cloud/xpenseflow/internal/currency"
	"github.com/annuksk07-cloud/xpenseflow/internal/remote"
	"github.com/annuksk07-cloud/xpenseflow/internal/remote/memory"
	remotepostgres "github.com/annuksk07-cloud/xpenseflow/internal/remote/postgres"
	remoteredis "github.com/annuksk07-cloud/xpenseflow/internal/remote/redis"
	"github.com/annuksk07-cloud/xpenseflow/internal/session"
	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi"
	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi/handler"
	"github.com/annuksk07-cloud/xpenseflow/internal/transport/httpapi/middleware"
	"github.com/annuksk07-cloud/xpenseflow/pkg/config"
	"github.com/annuksk07-cloud/xpenseflow/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting XpenseFlow ledger API",
		"env", cfg.Env,
		"port", cfg.Port,
		"sync_backend", cfg.SyncBackend,
	)

	// Rate table: built-in static rates unless a rates file is configured
	rates := currency.DefaultTable()
	if cfg.RatesPath != "" {
		loaded, err := config.LoadRates(cfg.RatesPath)
		if err != nil {
			log.Error("Failed to load rates file", "path", cfg.RatesPath, "error", err)
			os.Exit(1)
		}
		rates, err = currency.NewTable(loaded)
		if err != nil {
			log.Error("Invalid rates file", "path", cfg.RatesPath, "error", err)
			os.Exit(1)
		}
		log.Info("Loaded static rate table", "path", cfg.RatesPath, "currencies", len(loaded))
	}

	// Sync adapter: the authoritative store behind the engines
	var adapter remote.Adapter
	switch cfg.SyncBackend {
	case config.BackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		adapter = remoteredis.New(redisClient, log)
		log.Info("Redis sync backend ready")

	case config.BackendPostgres:
		pool, err := remotepostgres.NewPool(ctx, remotepostgres.PoolConfig{URL: cfg.DatabaseURL})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgAdapter := remotepostgres.New(pool, log)
		if err := pgAdapter.EnsureSchema(ctx); err != nil {
			log.Error("Failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		adapter = pgAdapter
		log.Info("Postgres sync backend ready")

	default:
		adapter = memory.New()
		log.Warn("Using in-memory sync backend; data will not survive restarts")
	}

	sessions, err := session.NewManager(session.Config{
		BaseContext: ctx,
		Adapter:     adapter,
		Rates:       rates,
		Logger:      log,
		ToastTTL:    cfg.ToastTTL,
	})
	if err != nil {
		log.Error("Failed to create session manager", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)

	allowedOrigins := []string{"http://localhost:5173", "http://localhost:5174"} // Vite ports
	if cfg.IsProduction() {
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	r := httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		AllowedOrigins: allowedOrigins,
		LedgerHandler:  handler.NewLedgerHandler(sessions),
		ExportHandler:  handler.NewExportHandler(sessions),
		JWTMiddleware:  middleware.JWTMiddleware(jwtSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
