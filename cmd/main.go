package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/user-directory/internal/command"
	"github.com/eaglebank/user-directory/internal/config"
	"github.com/eaglebank/user-directory/internal/handler"
	applog "github.com/eaglebank/user-directory/internal/logger"
	"github.com/eaglebank/user-directory/internal/query"
	"github.com/eaglebank/user-directory/internal/repository"
	"github.com/eaglebank/user-directory/internal/service"
	"github.com/eaglebank/user-directory/shared/events"
	"github.com/eaglebank/user-directory/shared/middleware"
	redisClient "github.com/eaglebank/user-directory/shared/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("User directory stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store (source of truth)
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis connection (event streaming), optional
	var publisher command.EventPublisher
	if cfg.EventsEnabled() {
		redis, err := redisClient.NewClient(ctx, redisClient.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer redis.Close()
		publisher = events.NewPublisher(redis.Client, events.UserEventsStream, cfg.EventStreamMaxLen)
		logger.Info("Publishing user events", zap.String("stream", events.UserEventsStream))
	} else {
		logger.Info("REDIS_ADDR not set, user events disabled")
	}

	sorter, err := service.NewNameSorter(cfg.SortLocale)
	if err != nil {
		return err
	}

	// --- CQRS wiring ---
	commandSvc := command.NewUserCommandService(store, publisher, cfg.StoreTimeout, logger)
	querySvc := query.NewUserQueryService(store, sorter, cfg.StoreTimeout)
	userHandler := handler.NewUserHandler(commandSvc, querySvc)

	// Setup router
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.LoggingMiddleware(logger), gin.Recovery())

	userHandler.Register(router.Group("/api"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("User directory starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// openStore connects the configured store and returns its release function.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverBolt:
		db := repository.NewBoltDB(cfg.BoltPath)
		if err := db.Open(); err != nil {
			return nil, nil, err
		}
		logger.Info("Opened bolt store", zap.String("path", cfg.BoltPath))
		return repository.NewUserBoltRepository(db), func() { db.Close() }, nil

	default:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}

		repo := repository.NewUserRepository(db)
		if err := repo.EnsureSchema(pingCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Connected to postgres store")
		return repo, func() { db.Close() }, nil
	}
}
