package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/books_backend/internal/adapters/messaging/rabbitmq"
	portsrepo "github.com/SscSPs/books_backend/internal/core/ports/repositories"
	"github.com/SscSPs/books_backend/internal/core/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/SscSPs/books_backend/internal/handlers"
	"github.com/SscSPs/books_backend/internal/middleware"
	"github.com/SscSPs/books_backend/internal/platform/config"
	"github.com/SscSPs/books_backend/internal/platform/database"
	"github.com/SscSPs/books_backend/internal/repositories/database/memory"
	"github.com/SscSPs/books_backend/internal/repositories/database/pgsql"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run database migrations, the HTTP API and the ingestion consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return logger
}

func serve(parent context.Context, cfg *config.Config, skipMigrations bool) error {
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(parentOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dto.RegisterGinValidators(); err != nil {
		return err
	}

	repos, closeRepos, err := openRepositories(ctx, logger, cfg, skipMigrations)
	if err != nil {
		return err
	}
	defer closeRepos()

	serviceContainer := services.NewServiceContainer(repos)

	redisClient, err := openRedis(ctx, logger, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	rateLimiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	ingestionDone := make(chan struct{})
	if cfg.AMQPURL != "" {
		supervisor, err := rabbitmq.NewSupervisor(rabbitmq.AMQPDialer(cfg.AMQPURL), cfg.AMQPQueue, serviceContainer.Journal, logger)
		if err != nil {
			return err
		}
		go func() {
			defer close(ingestionDone)
			supervisor.Run(ctx)
		}()
	} else {
		logger.Info("AMQP_URL not set, journal entry ingestion is disabled")
		close(ingestionDone)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	select {
	case <-ingestionDone:
	case <-shutdownCtx.Done():
		logger.Warn("Journal entry ingestion did not stop before the shutdown timeout")
	}
	return nil
}

func parentOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// openRepositories returns the PostgreSQL repositories, or the in-memory store when no database is configured.
func openRepositories(ctx context.Context, logger *slog.Logger, cfg *config.Config, skipMigrations bool) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("PGSQL_URL not set, using the in-memory store; data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	if !skipMigrations {
		logger.Info("Running database migrations...")
		if err := database.Migrate(logger, cfg.DatabaseURL, cfg.MigrationsPath, database.Up); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), dbPool.Close, nil
}

func openRedis(ctx context.Context, logger *slog.Logger, url string) (*redis.Client, error) {
	if url == "" {
		logger.Info("REDIS_URL not set, rate limit counters are kept in memory")
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
