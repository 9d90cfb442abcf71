package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tobyh/campussync/internal/config"
	"github.com/tobyh/campussync/internal/db"
	"github.com/tobyh/campussync/internal/idempotency"
	"github.com/tobyh/campussync/internal/logger"
	"github.com/tobyh/campussync/internal/middleware"
	"github.com/tobyh/campussync/internal/repository"
	syncsvc "github.com/tobyh/campussync/internal/sync"
	"github.com/tobyh/campussync/internal/webhook"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Config{Environment: cfg.Environment, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	// Run migrations before opening the pool
	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	// Idempotency guard: process-local by default, Redis when configured
	var guard idempotency.Guard = idempotency.NewMemoryGuard(cfg.IdempotencyTTL)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		guard = idempotency.NewRedisGuard(client, cfg.IdempotencyTTL)
		zl.Info("using redis idempotency guard", zap.String("addr", cfg.RedisAddr))
	}

	var defaultTenant uuid.UUID
	if cfg.DefaultTenant != "" {
		defaultTenant, err = uuid.Parse(cfg.DefaultTenant)
		if err != nil {
			zl.Fatal("invalid default tenant id", zap.Error(err))
		}
	}

	store, err := repository.NewStore(conn.Pool)
	if err != nil {
		zl.Fatal("failed to build repositories", zap.Error(err))
	}
	eventsRepo := repository.NewEventLogRepository(conn.Pool)

	services := syncsvc.NewServices(store, zl)
	pipeline := webhook.NewService(guard, eventsRepo, services, cfg.Source, zl)
	handler := webhook.NewHTTPHandler(pipeline, defaultTenant, zl)

	corsHandler := cors.New(cors.Options{
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("POST /webhook/{module}", handler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(zl)(corsHandler.Handler(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("starting webhook server", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}
