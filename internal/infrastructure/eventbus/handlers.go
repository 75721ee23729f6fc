package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/gigwork/internal/domain/event"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// PayloadEvent is implemented by events carrying a raw JSON payload,
// i.e. events read off the bus rather than freshly constructed.
type PayloadEvent interface {
	event.DomainEvent
	Payload() json.RawMessage
}

// ErrNoPayload is returned when a handler receives an event without a
// decodable payload.
var ErrNoPayload = errors.New("event carries no payload")

func eventPayload(evt event.DomainEvent) (json.RawMessage, error) {
	pe, ok := evt.(PayloadEvent)
	if !ok {
		return nil, ErrNoPayload
	}
	return pe.Payload(), nil
}

// LoggingHandler logs every event it receives. Useful as an audit trail
// subscribed to all event types.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a logging event handler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{logger: logger}
}

// Handle logs the event.
func (h *LoggingHandler) Handle(ctx context.Context, evt event.DomainEvent) error {
	h.logger.InfoContext(ctx, "domain event received",
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
		slog.String("aggregate_type", evt.AggregateType()),
		slog.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// Broadcaster pushes a message to a connected user. The websocket hub
// implements it; declared here on the consumer side.
type Broadcaster interface {
	SendToUser(userID string, message []byte) error
}

// notificationPayload mirrors the notification.created event payload.
type notificationPayload struct {
	NotificationID uuid.UUID `json:"notification_id"`
	UserID         uuid.UUID `json:"user_id"`
	NotifType      string    `json:"notif_type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedGigID   uuid.UUID `json:"related_gig_id,omitempty"`
}

// pushMessage is the JSON frame delivered over the websocket.
type pushMessage struct {
	Kind           string    `json:"kind"`
	NotificationID uuid.UUID `json:"notification_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	RelatedGigID   uuid.UUID `json:"related_gig_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NotificationPushHandler forwards committed notifications to their
// recipient over the websocket hub. Subscribed to notification.created.
type NotificationPushHandler struct {
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewNotificationPushHandler creates a push handler.
func NewNotificationPushHandler(broadcaster Broadcaster, logger *slog.Logger) *NotificationPushHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationPushHandler{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Handle decodes the notification payload and pushes it to the recipient.
// A recipient without an open connection is not an error.
func (h *NotificationPushHandler) Handle(ctx context.Context, evt event.DomainEvent) error {
	raw, err := eventPayload(evt)
	if err != nil {
		return err
	}

	var payload notificationPayload
	if err = json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode notification payload: %w", err)
	}
	if payload.UserID.IsZero() {
		return errors.New("notification payload has no recipient")
	}

	frame, err := json.Marshal(pushMessage{
		Kind:           "notification",
		NotificationID: payload.NotificationID,
		Type:           payload.NotifType,
		Title:          payload.Title,
		Message:        payload.Message,
		RelatedGigID:   payload.RelatedGigID,
		OccurredAt:     evt.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	if err = h.broadcaster.SendToUser(payload.UserID.String(), frame); err != nil {
		h.logger.DebugContext(ctx, "notification push skipped",
			slog.String("user_id", payload.UserID.String()),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ClientSummarySource recomputes and caches a client dashboard summary.
type ClientSummarySource interface {
	Warm(ctx context.Context, userID uuid.UUID) error
}

// FreelancerSummarySource recomputes and caches a freelancer dashboard
// summary.
type FreelancerSummarySource interface {
	Warm(ctx context.Context, userID uuid.UUID) error
}

// SummaryWarmHandler rebuilds materialized dashboard summaries after the
// writes that invalidated them, so the next dashboard read is a cache hit.
// Subscribed to gig.completed and application.accepted by the worker.
type SummaryWarmHandler struct {
	clients     ClientSummarySource
	freelancers FreelancerSummarySource
	logger      *slog.Logger
}

// NewSummaryWarmHandler creates a summary warm handler.
func NewSummaryWarmHandler(
	clients ClientSummarySource,
	freelancers FreelancerSummarySource,
	logger *slog.Logger,
) *SummaryWarmHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryWarmHandler{
		clients:     clients,
		freelancers: freelancers,
		logger:      logger,
	}
}

// summaryPayload carries the fields the warm handler needs from gig and
// application events.
type summaryPayload struct {
	PosterID    uuid.UUID `json:"poster_id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
}

// Handle warms the summaries of the users named in the event payload.
func (h *SummaryWarmHandler) Handle(ctx context.Context, evt event.DomainEvent) error {
	raw, err := eventPayload(evt)
	if err != nil {
		return err
	}

	var payload summaryPayload
	if err = json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}

	if !payload.PosterID.IsZero() {
		if err = h.clients.Warm(ctx, payload.PosterID); err != nil {
			return fmt.Errorf("failed to warm client summary: %w", err)
		}
	}
	if !payload.ApplicantID.IsZero() {
		if err = h.freelancers.Warm(ctx, payload.ApplicantID); err != nil {
			return fmt.Errorf("failed to warm freelancer summary: %w", err)
		}
	}

	h.logger.DebugContext(ctx, "dashboard summaries warmed",
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
	)
	return nil
}

// Default dead letter queue settings.
const (
	defaultDeadLetterKey = "events:dead_letter"
	defaultDeadLetterTTL = 7 * 24 * time.Hour
	defaultDeadLetterMax = 10000
)

// DeadLetterEntry records an event whose handler exhausted its retries.
type DeadLetterEntry struct {
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         string          `json:"error"`
	FailedAt      time.Time       `json:"failed_at"`
}

// DeadLetterHandler stores failed events in a capped Redis list for later
// inspection and replay.
type DeadLetterHandler struct {
	client   *redis.Client
	queueKey string
	ttl      time.Duration
	maxLen   int64
	logger   *slog.Logger
}

// DeadLetterOption configures a DeadLetterHandler.
type DeadLetterOption func(*DeadLetterHandler)

// WithDeadLetterQueueKey sets the Redis list key.
func WithDeadLetterQueueKey(key string) DeadLetterOption {
	return func(h *DeadLetterHandler) {
		h.queueKey = key
	}
}

// WithDeadLetterLogger sets the logger.
func WithDeadLetterLogger(logger *slog.Logger) DeadLetterOption {
	return func(h *DeadLetterHandler) {
		h.logger = logger
	}
}

// NewDeadLetterHandler creates a dead letter handler.
func NewDeadLetterHandler(client *redis.Client, opts ...DeadLetterOption) *DeadLetterHandler {
	h := &DeadLetterHandler{
		client:   client,
		queueKey: defaultDeadLetterKey,
		ttl:      defaultDeadLetterTTL,
		maxLen:   defaultDeadLetterMax,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record stores the failed event with the error that killed it.
func (h *DeadLetterHandler) Record(ctx context.Context, evt event.DomainEvent, handlerErr error) error {
	entry := DeadLetterEntry{
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt(),
		Error:         handlerErr.Error(),
		FailedAt:      time.Now().UTC(),
	}
	if raw, err := eventPayload(evt); err == nil {
		entry.Payload = raw
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter entry: %w", err)
	}

	pipe := h.client.Pipeline()
	pipe.LPush(ctx, h.queueKey, data)
	pipe.LTrim(ctx, h.queueKey, 0, h.maxLen-1)
	pipe.Expire(ctx, h.queueKey, h.ttl)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store dead letter entry: %w", err)
	}

	h.logger.WarnContext(ctx, "event sent to dead letter queue",
		slog.String("event_type", evt.EventType()),
		slog.String("aggregate_id", evt.AggregateID()),
		slog.String("error", handlerErr.Error()),
	)
	return nil
}

// Wrap returns an EventHandler that records the inner handler's failure in
// the dead letter queue and then swallows it, so the bus does not retry.
// Use it around handlers whose failures should be parked, not repeated.
func (h *DeadLetterHandler) Wrap(inner EventHandler) EventHandler {
	return func(ctx context.Context, evt event.DomainEvent) error {
		err := inner(ctx, evt)
		if err == nil {
			return nil
		}
		if recordErr := h.Record(ctx, evt, err); recordErr != nil {
			return errors.Join(err, recordErr)
		}
		return nil
	}
}

// Len returns the number of parked events.
func (h *DeadLetterHandler) Len(ctx context.Context) (int64, error) {
	n, err := h.client.LLen(ctx, h.queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read dead letter queue length: %w", err)
	}
	return n, nil
}

// Entries returns up to limit parked events, newest first. The queue is
// left untouched.
func (h *DeadLetterHandler) Entries(ctx context.Context, limit int64) ([]DeadLetterEntry, error) {
	if limit <= 0 {
		limit = h.maxLen
	}

	raw, err := h.client.LRange(ctx, h.queueKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letter queue: %w", err)
	}

	entries := make([]DeadLetterEntry, 0, len(raw))
	for _, item := range raw {
		var entry DeadLetterEntry
		if unmarshalErr := json.Unmarshal([]byte(item), &entry); unmarshalErr != nil {
			h.logger.WarnContext(ctx, "skipping malformed dead letter entry",
				slog.String("error", unmarshalErr.Error()),
			)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Purge drops every parked event.
func (h *DeadLetterHandler) Purge(ctx context.Context) error {
	if err := h.client.Del(ctx, h.queueKey).Err(); err != nil {
		return fmt.Errorf("failed to purge dead letter queue: %w", err)
	}
	return nil
}

// Replay republishes up to limit parked events onto the bus, oldest first,
// removing each one as it goes out. A failed publish puts the entry back
// and stops, so nothing is lost mid-replay.
func (h *DeadLetterHandler) Replay(ctx context.Context, bus event.Bus, limit int64) (int, error) {
	if limit <= 0 {
		limit = h.maxLen
	}

	replayed := 0
	for int64(replayed) < limit {
		raw, err := h.client.RPop(ctx, h.queueKey).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return replayed, fmt.Errorf("failed to pop dead letter entry: %w", err)
		}

		var entry DeadLetterEntry
		if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr != nil {
			h.logger.WarnContext(ctx, "dropping malformed dead letter entry",
				slog.String("error", unmarshalErr.Error()),
			)
			continue
		}

		if publishErr := bus.Publish(ctx, &replayEvent{entry: entry}); publishErr != nil {
			if restoreErr := h.client.RPush(ctx, h.queueKey, raw).Err(); restoreErr != nil {
				return replayed, errors.Join(publishErr, restoreErr)
			}
			return replayed, fmt.Errorf("failed to republish dead letter entry: %w", publishErr)
		}

		replayed++
	}
	return replayed, nil
}

// replayEvent adapts a dead letter entry back into a publishable event.
// It marshals to the originally recorded payload.
type replayEvent struct {
	entry DeadLetterEntry
}

func (e *replayEvent) EventType() string        { return e.entry.EventType }
func (e *replayEvent) AggregateID() string      { return e.entry.AggregateID }
func (e *replayEvent) AggregateType() string    { return e.entry.AggregateType }
func (e *replayEvent) OccurredAt() time.Time    { return e.entry.OccurredAt }
func (e *replayEvent) Version() int             { return 1 }
func (e *replayEvent) Metadata() event.Metadata { return event.Metadata{Timestamp: e.entry.FailedAt} }

func (e *replayEvent) MarshalJSON() ([]byte, error) {
	if len(e.entry.Payload) == 0 {
		return []byte("null"), nil
	}
	return e.entry.Payload, nil
}
