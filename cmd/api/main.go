package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Tomlord1122/lofi-playground/internal/ambient"
	"github.com/Tomlord1122/lofi-playground/internal/auth"
	"github.com/Tomlord1122/lofi-playground/internal/config"
	"github.com/Tomlord1122/lofi-playground/internal/database"
	"github.com/Tomlord1122/lofi-playground/internal/logger"
	"github.com/Tomlord1122/lofi-playground/internal/metrics"
	"github.com/Tomlord1122/lofi-playground/internal/middleware"
	"github.com/Tomlord1122/lofi-playground/internal/repository"
	"github.com/Tomlord1122/lofi-playground/internal/server"
	"github.com/Tomlord1122/lofi-playground/internal/service"
	"github.com/Tomlord1122/lofi-playground/internal/telemetry"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, cleanup func(context.Context), log *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 5 seconds to finish the requests it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if cleanup != nil {
		cleanup(ctxTimeout)
	}

	if dbService != nil {
		log.Info("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Error("Error closing database connection pool", zap.Error(err))
		} else {
			log.Info("Database connection pool closed.")
		}
	}

	log.Info("Server exiting")
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogFormat, cfg.Debug)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()
	zap.ReplaceGlobals(log)

	var cleanups []func(context.Context)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.InitTracer(context.Background(), cfg.Telemetry)
		if err != nil {
			log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		cleanups = append(cleanups, func(ctx context.Context) {
			if err := telemetry.Shutdown(ctx, tp); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		})
	}

	// 1. Database
	dbService, err := database.New(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Running database auto-migration...")
	if err := dbService.Migrate(); err != nil {
		log.Fatal("Failed to auto-migrate database", zap.Error(err))
	}
	log.Info("Database auto-migration complete.")

	// 2. Repositories and services
	todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
	todoService := service.NewTodoService(todoRepo, log)

	sounds, err := ambient.Default()
	if err != nil {
		log.Fatal("Failed to load sound catalog", zap.Error(err))
	}

	// 3. Rate limiting, shared through Redis when configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		cleanups = append(cleanups, func(context.Context) {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		})
	}
	rateLimit, err := middleware.RateLimit(cfg.RateLimit, redisClient, log)
	if err != nil {
		log.Fatal("Failed to configure rate limiting", zap.Error(err))
	}

	// 4. Server
	apiServer := server.NewServer(server.Options{
		Port:        cfg.Port,
		TodoService: todoService,
		DB:          dbService,
		Sounds:      sounds,
		Verifier:    auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer),
		Metrics:     metrics.New(),
		Logger:      log,
		RateLimit:   rateLimit,
		CORSOrigins: cfg.CORSOrigins,
		Tracing:     cfg.Telemetry.Enabled,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, func(ctx context.Context) {
		for _, c := range cleanups {
			c(ctx)
		}
	}, log, done)

	log.Info("Starting server", zap.String("addr", apiServer.Addr), zap.String("db_driver", cfg.Database.Driver))
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server ListenAndServe error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete.")
}
