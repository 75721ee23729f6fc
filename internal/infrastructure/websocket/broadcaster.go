package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/lllypuk/gigwork/internal/domain/event"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// EventBus defines the interface for subscribing to domain events.
// Declared on the consumer side.
type EventBus interface {
	Subscribe(eventType string, handler func(ctx context.Context, event event.DomainEvent) error) error
}

// PayloadProvider is an interface for events that can provide their payload.
type PayloadProvider interface {
	Payload() json.RawMessage
}

// OutboundMessage represents a gig update sent over WebSocket.
type OutboundMessage struct {
	Type  string  `json:"type"`
	GigID *string `json:"gig_id,omitempty"`
	Data  any     `json:"data,omitempty"`
}

// Broadcaster listens to the event bus and fans gig lifecycle events out to
// the gig's watch room: the poster and applicants see assignment, status
// steps and new applications as they happen.
type Broadcaster struct {
	hub      *Hub
	eventBus EventBus
	logger   *slog.Logger

	// eventTypes lists which event types to subscribe to.
	eventTypes []string

	running   bool
	runningMu sync.RWMutex
}

// BroadcasterOption configures a Broadcaster.
type BroadcasterOption func(*Broadcaster)

// WithBroadcasterLogger sets the logger for the broadcaster.
func WithBroadcasterLogger(logger *slog.Logger) BroadcasterOption {
	return func(b *Broadcaster) {
		b.logger = logger
	}
}

// WithEventTypes sets which event types to subscribe to.
func WithEventTypes(eventTypes []string) BroadcasterOption {
	return func(b *Broadcaster) {
		b.eventTypes = eventTypes
	}
}

// DefaultEventTypes returns the event types broadcast to gig watch rooms.
func DefaultEventTypes() []string {
	return []string{
		"gig.assigned",
		"gig.status_changed",
		"gig.completed",
		"application.submitted",
	}
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster(hub *Hub, eventBus EventBus, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		hub:        hub,
		eventBus:   eventBus,
		logger:     slog.Default(),
		eventTypes: DefaultEventTypes(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Start subscribes to the event bus. Registers handlers without blocking.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = true
	b.runningMu.Unlock()

	for _, eventType := range b.eventTypes {
		if err := b.eventBus.Subscribe(eventType, func(handlerCtx context.Context, evt event.DomainEvent) error {
			return b.handleEvent(handlerCtx, evt)
		}); err != nil {
			b.logger.ErrorContext(ctx, "failed to subscribe to event",
				slog.String("event_type", eventType),
				slog.String("error", err.Error()),
			)
			return err
		}
		b.logger.DebugContext(ctx, "subscribed to event", slog.String("event_type", eventType))
	}

	b.logger.InfoContext(ctx, "websocket broadcaster started",
		slog.Int("event_types", len(b.eventTypes)),
	)

	return nil
}

// IsRunning returns whether the broadcaster is running.
func (b *Broadcaster) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// handleEvent broadcasts one domain event to its gig's watch room.
func (b *Broadcaster) handleEvent(ctx context.Context, evt event.DomainEvent) error {
	gigID := b.extractGigID(evt)
	if gigID.IsZero() {
		b.logger.DebugContext(ctx, "event carries no gig, not broadcast",
			slog.String("event_type", evt.EventType()),
		)
		return nil
	}

	messageBytes, err := json.Marshal(b.transformEvent(evt, gigID))
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to marshal websocket message",
			slog.String("event_type", evt.EventType()),
			slog.String("error", err.Error()),
		)
		return err
	}

	b.hub.BroadcastToGig(gigID, messageBytes)
	b.logger.DebugContext(ctx, "broadcast event to gig watchers",
		slog.String("event_type", evt.EventType()),
		slog.String("gig_id", gigID.String()),
	)
	return nil
}

// transformEvent converts a domain event to a WebSocket message.
func (b *Broadcaster) transformEvent(evt event.DomainEvent, gigID uuid.UUID) *OutboundMessage {
	var data any
	if payloadEvent, ok := evt.(PayloadProvider); ok {
		data = payloadEvent.Payload()
	} else {
		data = map[string]any{
			"aggregate_id":   evt.AggregateID(),
			"aggregate_type": evt.AggregateType(),
			"occurred_at":    evt.OccurredAt(),
			"version":        evt.Version(),
		}
	}

	id := gigID.String()
	return &OutboundMessage{
		Type:  evt.EventType(),
		GigID: &id,
		Data:  data,
	}
}

// extractGigID extracts the gig ID from an event. Gig events carry it as
// the aggregate ID; application events carry it in the payload.
func (b *Broadcaster) extractGigID(evt event.DomainEvent) uuid.UUID {
	if evt.AggregateType() == "Gig" {
		id, err := uuid.ParseUUID(evt.AggregateID())
		if err == nil {
			return id
		}
	}

	if payloadEvent, ok := evt.(PayloadProvider); ok {
		var data struct {
			GigID string `json:"gig_id"`
		}
		if unmarshalErr := json.Unmarshal(payloadEvent.Payload(), &data); unmarshalErr == nil && data.GigID != "" {
			if parsedID, parseErr := uuid.ParseUUID(data.GigID); parseErr == nil {
				return parsedID
			}
		}
	}

	return uuid.UUID("")
}
