//go:build integration

package integration_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/domain/event"
	notifdomain "github.com/lllypuk/gigwork/internal/domain/notification"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	"github.com/lllypuk/gigwork/internal/infrastructure/eventbus"
	"github.com/lllypuk/gigwork/tests/testutil"
)

const (
	publishRetryDelay = 100 * time.Millisecond
	deliveryTimeout   = 5 * time.Second
)

func newTestNotification(t *testing.T) *notifdomain.Notification {
	t.Helper()

	notif, err := notifdomain.NewNotification(
		uuid.NewUUID(),
		notifdomain.TypeGigAssigned,
		"You were assigned",
		"The poster accepted your application",
		uuid.NewUUID(),
	)
	require.NoError(t, err)
	return notif
}

// TestEventBusIntegration_PublishSubscribe verifies a published event
// reaches a subscribed handler through real Redis Pub/Sub.
func TestEventBusIntegration_PublishSubscribe(t *testing.T) {
	client, prefix := testutil.SetupTestRedisWithPrefix(t)

	bus := eventbus.NewRedisEventBus(client, eventbus.WithChannelPrefix(prefix))

	var delivered atomic.Int64
	received := make(chan event.DomainEvent, 16)
	err := bus.Subscribe(notifdomain.EventTypeCreated, func(_ context.Context, evt event.DomainEvent) error {
		delivered.Add(1)
		select {
		case received <- evt:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = bus.Start(ctx) }()
	t.Cleanup(func() { _ = bus.Shutdown() })

	notif := newTestNotification(t)
	evt := notifdomain.NewCreated(notif, event.NewMetadata(notif.UserID().String(), "", ""))

	// Publish until the subscription is live and the handler fires
	deadline := time.After(deliveryTimeout)
	for delivered.Load() == 0 {
		require.NoError(t, bus.Publish(ctx, evt))
		select {
		case <-deadline:
			t.Fatal("event was not delivered in time")
		case <-time.After(publishRetryDelay):
		}
	}

	got := <-received
	assert.Equal(t, notifdomain.EventTypeCreated, got.EventType())
	assert.Equal(t, notif.ID().String(), got.AggregateID())
	assert.NotEmpty(t, got.Metadata().UserID)
}

// TestEventBusIntegration_DeadLetterLifecycle verifies the record, list,
// replay and purge cycle against real Redis.
func TestEventBusIntegration_DeadLetterLifecycle(t *testing.T) {
	client, prefix := testutil.SetupTestRedisWithPrefix(t)
	ctx := testutil.NewTestContext(t)

	deadLetter := eventbus.NewDeadLetterHandler(client,
		eventbus.WithDeadLetterQueueKey(prefix+"deadletter"),
	)

	notif := newTestNotification(t)
	evt := notifdomain.NewCreated(notif, event.NewMetadata(notif.UserID().String(), "", ""))

	// Record
	require.NoError(t, deadLetter.Record(ctx, evt, assert.AnError))

	count, err := deadLetter.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// List
	entries, err := deadLetter.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, notifdomain.EventTypeCreated, entries[0].EventType)
	assert.Equal(t, notif.ID().String(), entries[0].AggregateID)
	assert.Contains(t, entries[0].Error, assert.AnError.Error())

	// Replay removes the entry and republishes it
	bus := eventbus.NewRedisEventBus(client, eventbus.WithChannelPrefix(prefix))
	replayed, err := deadLetter.Replay(ctx, bus, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	count, err = deadLetter.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Purge clears whatever is left
	require.NoError(t, deadLetter.Record(ctx, evt, assert.AnError))
	require.NoError(t, deadLetter.Purge(ctx))

	count, err = deadLetter.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// TestEventBusIntegration_WrapParksFailedEvents verifies that a wrapped
// handler's failure lands in the dead letter queue instead of propagating.
func TestEventBusIntegration_WrapParksFailedEvents(t *testing.T) {
	client, prefix := testutil.SetupTestRedisWithPrefix(t)
	ctx := testutil.NewTestContext(t)

	deadLetter := eventbus.NewDeadLetterHandler(client,
		eventbus.WithDeadLetterQueueKey(prefix+"deadletter"),
	)

	failing := func(context.Context, event.DomainEvent) error {
		return assert.AnError
	}
	wrapped := deadLetter.Wrap(failing)

	notif := newTestNotification(t)
	evt := notifdomain.NewCreated(notif, event.NewMetadata("", "", ""))

	require.NoError(t, wrapped(ctx, evt))

	count, err := deadLetter.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
