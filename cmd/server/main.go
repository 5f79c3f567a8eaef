package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/session-auth/internal/config"
	"github.com/iliyamo/session-auth/internal/database"
	"github.com/iliyamo/session-auth/internal/handler"
	"github.com/iliyamo/session-auth/internal/logging"
	"github.com/iliyamo/session-auth/internal/queue"
	"github.com/iliyamo/session-auth/internal/repository"
	"github.com/iliyamo/session-auth/internal/router"
	"github.com/iliyamo/session-auth/internal/service"
	"github.com/iliyamo/session-auth/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load() // a missing .env is fine

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat, cfg.IsProduction())
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run wires the server and blocks until a shutdown signal. Every resource it
// opens is released before it returns.
func run(cfg config.Config, logger *slog.Logger) error {
	if cfg.UsingFallbackSecret {
		logger.Warn("JWT_SECRET is not set; using the built-in development secret, which is insecure")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Shared(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection (%s): %w", cfg.DBDriver, err)
	}
	defer func() { _ = database.CloseShared() }()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	users := repository.NewUserRepo(db, cfg.BcryptCost)
	var store service.Store = users

	rdb, err := config.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable; user cache disabled", "error", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		store = repository.NewCachedUserRepo(users, rdb, cfg.UserCacheTTL, logger)
		logger.Info("user cache enabled", "ttl", cfg.UserCacheTTL)
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsQueue, logger)
		if cfg.EventsConsumer {
			go func() {
				err := queue.StartAuthEventConsumer(ctx, queue.ConsumerConfig{
					URL:    cfg.RabbitMQURL,
					Queue:  cfg.EventsQueue,
					LogDir: cfg.EventLogDir,
					Log:    logger,
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("auth event consumer stopped", "error", err)
				}
			}()
		}
	}

	svc := service.NewAuthService(store, service.Options{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.SessionTTL,
		Timeout:    cfg.RequestTimeout,
		BcryptCost: cfg.BcryptCost,
	}, events, logger)
	sessions := session.NewTransport(cfg.CookieSecure, cfg.SessionTTL)

	e := router.New(router.Deps{
		Auth:     handler.NewAuthHandler(svc, sessions),
		Pages:    &handler.Pages{Users: svc},
		SEO:      handler.NewSEO(cfg.BaseURL),
		Store:    users,
		Verifier: svc,
		Sessions: sessions,
		Log:      logger,
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr(), "env", cfg.Env, "db", cfg.DBDriver)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
