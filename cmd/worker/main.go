// Package main provides the worker service entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/gigwork/internal/application/dashboard"
	"github.com/lllypuk/gigwork/internal/config"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/infrastructure/eventbus"
	"github.com/lllypuk/gigwork/internal/infrastructure/metrics"
	mongodbinfra "github.com/lllypuk/gigwork/internal/infrastructure/mongodb"
	"github.com/lllypuk/gigwork/internal/infrastructure/repository/mongodb"
	"github.com/lllypuk/gigwork/internal/infrastructure/summary"
	"github.com/lllypuk/gigwork/internal/worker"
)

// Timeout constants for worker service.
const redisPingTimeout = 5 * time.Second

//nolint:funlen // Main function handles startup orchestration and is readable as-is
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)

	logger.Info("starting gigwork worker service",
		slog.String("version", "0.1.0"),
		slog.String("environment", environmentName(cfg)),
	)

	// Create a context that will be cancelled on shutdown signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	go handleShutdown(cancel, logger)

	// Connect to MongoDB
	mongoClient, err := connectMongoDB(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		cancel()
		os.Exit(1) //nolint:gocritic // cancel() called before exit
	}
	defer func() {
		if disconnectErr := mongoClient.Disconnect(context.Background()); disconnectErr != nil {
			logger.Error("failed to disconnect from MongoDB", slog.String("error", disconnectErr.Error()))
		}
	}()

	// Setup repositories
	db := mongoClient.Database(cfg.MongoDB.Database)
	gigRepo := mongodb.NewMongoGigRepository(db.Collection(mongodbinfra.CollectionGigs))
	notificationRepo := mongodb.NewMongoNotificationRepository(db.Collection(mongodbinfra.CollectionNotifications))

	// Setup Redis for EventBus and summary cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			logger.Error("failed to close Redis", slog.String("error", closeErr.Error()))
		}
	}()

	// Verify Redis connection
	pingCtx, pingCancel := context.WithTimeout(ctx, redisPingTimeout)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		pingCancel()
		logger.Error("failed to connect to Redis", slog.String("error", pingErr.Error()))
		os.Exit(1)
	}
	pingCancel()

	logger.InfoContext(ctx, "connected to Redis", slog.String("addr", cfg.Redis.Addr))

	// Setup EventBus
	busMetrics := metrics.NewEventBusMetrics(prometheus.DefaultRegisterer)
	eventBus := eventbus.NewRedisEventBus(
		redisClient,
		eventbus.WithLogger(logger),
		eventbus.WithChannelPrefix(cfg.EventBus.RedisChannelPrefix),
		eventbus.WithMetrics(busMetrics),
	)

	// Setup summary warming: recompute dashboard summaries after the
	// events that invalidate them
	summaryCache := summary.NewRedisCache(summary.Config{
		Client:    redisClient,
		KeyPrefix: cfg.Summary.KeyPrefix,
		TTL:       cfg.Summary.TTL,
	})
	clientDashboards := dashboard.NewClientDashboardUseCase(gigRepo, summaryCache, logger)
	freelancerDashboards := dashboard.NewFreelancerDashboardUseCase(gigRepo, summaryCache, logger)

	warmHandler := eventbus.NewSummaryWarmHandler(
		summary.NewClientWarmer(clientDashboards),
		summary.NewFreelancerWarmer(freelancerDashboards),
		logger,
	)

	// Failed warm attempts land in the dead letter queue for replay
	deadLetter := eventbus.NewDeadLetterHandler(redisClient, eventbus.WithDeadLetterLogger(logger))
	if subscribeErr := subscribeWarmHandler(eventBus, deadLetter.Wrap(warmHandler.Handle)); subscribeErr != nil {
		logger.Error("failed to subscribe summary warm handler", slog.String("error", subscribeErr.Error()))
		os.Exit(1)
	}

	defer func() {
		if shutdownErr := eventBus.Shutdown(); shutdownErr != nil {
			logger.Error("failed to shut down event bus", slog.String("error", shutdownErr.Error()))
		}
	}()

	// Setup deadline sweeper
	sweepConfig := setupSweepConfig(cfg)
	sweeper := worker.NewDeadlineSweeper(gigRepo, notificationRepo, eventBus, logger, sweepConfig)

	logger.Info("starting workers",
		slog.Bool("deadline_sweep_enabled", sweepConfig.Enabled),
		slog.Duration("deadline_sweep_interval", sweepConfig.Interval),
		slog.Duration("deadline_window", sweepConfig.Window),
	)

	// Use WaitGroup to run workers concurrently
	var wg sync.WaitGroup

	// Start event bus; Start blocks until shutdown
	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := eventBus.Start(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("event bus error", slog.String("error", runErr.Error()))
		}
	}()

	// Start deadline sweeper
	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := sweeper.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("deadline sweeper error", slog.String("error", runErr.Error()))
		}
	}()

	// Wait for all workers to complete
	wg.Wait()

	logger.Info("worker service shutdown complete")
}

// subscribeWarmHandler wires the summary warm handler to the events that
// stale a dashboard summary.
func subscribeWarmHandler(bus *eventbus.RedisEventBus, handler eventbus.EventHandler) error {
	if err := bus.Subscribe(gigdomain.EventTypeCompleted, handler); err != nil {
		return err
	}
	return bus.Subscribe(appdomain.EventTypeAccepted, handler)
}

// setupSweepConfig builds the deadline sweep configuration from the
// worker settings, keeping the defaults for everything else.
func setupSweepConfig(cfg *config.Config) worker.DeadlineSweepConfig {
	sweepConfig := worker.DefaultDeadlineSweepConfig()
	if cfg.Worker.DeadlineSweepInterval > 0 {
		sweepConfig.Interval = cfg.Worker.DeadlineSweepInterval
	}
	if cfg.Worker.DeadlineWindow > 0 {
		sweepConfig.Window = cfg.Worker.DeadlineWindow
	}
	if os.Getenv("DEADLINE_SWEEP_DISABLED") == "true" {
		sweepConfig.Enabled = false
	}
	return sweepConfig
}

// setupLogger creates and configures the structured logger based on configuration.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	level := parseLogLevel(cfg.Log.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.IsDevelopment(),
	}

	switch cfg.Log.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// environmentName returns the environment name based on configuration.
func environmentName(cfg *config.Config) string {
	if cfg.IsProduction() {
		return config.EnvProduction
	}
	return config.EnvDevelopment
}

// connectMongoDB establishes a connection to MongoDB.
func connectMongoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoDB.URI).
		SetMaxPoolSize(cfg.MongoDB.MaxPoolSize)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.MongoDB.Timeout)
	defer pingCancel()

	if pingErr := client.Ping(pingCtx, nil); pingErr != nil {
		return nil, pingErr
	}

	logger.InfoContext(ctx, "connected to MongoDB",
		slog.String("database", cfg.MongoDB.Database),
	)

	return client, nil
}

// handleShutdown listens for OS signals and cancels the context.
func handleShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-quit
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	cancel()
}
