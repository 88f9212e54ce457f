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

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/megaflix/internal/api"
	"github.com/hszk-dev/megaflix/internal/api/handler"
	"github.com/hszk-dev/megaflix/internal/api/middleware"
	"github.com/hszk-dev/megaflix/internal/config"
	"github.com/hszk-dev/megaflix/internal/domain/repository"
	"github.com/hszk-dev/megaflix/internal/infrastructure/cache"
	"github.com/hszk-dev/megaflix/internal/infrastructure/postgres"
	"github.com/hszk-dev/megaflix/internal/infrastructure/queue"
	"github.com/hszk-dev/megaflix/internal/infrastructure/upstream"
	"github.com/hszk-dev/megaflix/internal/relay"
	"github.com/hszk-dev/megaflix/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	if err := postgres.EnsureSchema(ctx, pgClient.Pool()); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	var events repository.ActivityPublisher = queue.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		events = queueClient
		logger.Info("connected to RabbitMQ")
	}
	defer events.Close()

	tmdbClient := upstream.NewTMDBClient(upstream.TMDBConfig{
		BaseURL:  cfg.TMDB.BaseURL,
		APIKey:   cfg.TMDB.APIKey,
		Language: cfg.TMDB.Language,
		Timeout:  cfg.TMDB.Timeout,
	}, nil)
	embedClient := upstream.NewEmbedClient(cfg.Embed.BaseURL, cfg.Embed.HeaderTimeout)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pgClient.Pool())
	watchlistRepo := postgres.NewWatchlistRepository(pgClient.Pool())
	historyRepo := postgres.NewHistoryRepository(pgClient.Pool())
	sessions := cache.NewRedisSessionStore(redisClient)

	// Initialize services
	authCfg := usecase.DefaultAuthServiceConfig()
	authCfg.SessionTTL = cfg.Auth.SessionTTL

	clientIPs, err := middleware.NewClientIPResolver(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return err
	}

	responseCache := cache.NewResponseCache()
	go responseCache.Run(ctx, cfg.Cache.SweepInterval)

	router := api.NewRouter(api.Deps{
		Logger:  logger,
		Catalog: usecase.NewCatalogService(tmdbClient),
		Library: usecase.NewLibraryService(watchlistRepo, historyRepo, events, logger),
		Auth:    usecase.NewAuthService(userRepo, sessions, authCfg),
		Cache:   responseCache,
		CacheTTLs: handler.CacheTTLs{
			Short: cfg.Cache.ShortTTL,
			Long:  cfg.Cache.LongTTL,
		},
		Relay:   relay.New(embedClient, logger),
		Targets: embedClient,
		StreamLimiter: middleware.NewIPRateLimiter(
			cfg.RateLimit.StreamRequests,
			cfg.RateLimit.StreamWindow,
			cfg.RateLimit.StreamBurst,
			10*time.Minute,
		),
		ClientIPs: clientIPs,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	// Stop the cache sweeper before draining connections.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
