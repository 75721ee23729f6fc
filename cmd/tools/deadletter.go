// Command deadletter inspects and replays events parked in the dead
// letter queue after their handlers exhausted retries.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/gigwork/internal/config"
	"github.com/lllypuk/gigwork/internal/infrastructure/eventbus"
)

func main() {
	// Setup logger first
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Define flags
	action := flag.String("action", "list", "Action to perform (list, len, replay, purge)")
	limit := flag.Int64("limit", 0, "Max entries to list or replay (0 for all)")

	flag.Parse()

	if *action != "list" && *action != "len" && *action != "replay" && *action != "purge" {
		logger.Error("invalid action",
			slog.String("action", *action),
			slog.String("valid_values", "list, len, replay, purge"),
		)
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to Redis
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

	if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
		logger.Error("failed to connect to Redis", slog.String("error", pingErr.Error()))
		os.Exit(1)
	}

	deadLetter := eventbus.NewDeadLetterHandler(redisClient, eventbus.WithDeadLetterLogger(logger))

	// Execute operation
	switch *action {
	case "list":
		runList(ctx, deadLetter, *limit, logger)
	case "len":
		runLen(ctx, deadLetter, logger)
	case "replay":
		bus := eventbus.NewRedisEventBus(
			redisClient,
			eventbus.WithLogger(logger),
			eventbus.WithChannelPrefix(cfg.EventBus.RedisChannelPrefix),
		)
		runReplay(ctx, deadLetter, bus, *limit, logger)
	case "purge":
		runPurge(ctx, deadLetter, logger)
	}
}

func runList(ctx context.Context, deadLetter *eventbus.DeadLetterHandler, limit int64, logger *slog.Logger) {
	entries, err := deadLetter.Entries(ctx, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list dead letter entries", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for _, entry := range entries {
		logger.InfoContext(ctx, "dead letter entry",
			slog.String("event_type", entry.EventType),
			slog.String("aggregate_id", entry.AggregateID),
			slog.Time("occurred_at", entry.OccurredAt),
			slog.Time("failed_at", entry.FailedAt),
			slog.String("error", entry.Error),
		)
	}

	logger.InfoContext(ctx, "listing complete", slog.Int("entries", len(entries)))
}

func runLen(ctx context.Context, deadLetter *eventbus.DeadLetterHandler, logger *slog.Logger) {
	n, err := deadLetter.Len(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read queue length", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "dead letter queue length", slog.Int64("entries", n))
}

func runReplay(
	ctx context.Context,
	deadLetter *eventbus.DeadLetterHandler,
	bus *eventbus.RedisEventBus,
	limit int64,
	logger *slog.Logger,
) {
	replayed, err := deadLetter.Replay(ctx, bus, limit)
	if err != nil {
		logger.ErrorContext(ctx, "replay stopped",
			slog.Int("replayed", replayed),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "replay completed successfully", slog.Int("replayed", replayed))
}

func runPurge(ctx context.Context, deadLetter *eventbus.DeadLetterHandler, logger *slog.Logger) {
	if err := deadLetter.Purge(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to purge dead letter queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "dead letter queue purged")
}
