package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/channels/gochannel"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/events"
)

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)

	received := make(chan *events.GenerationCompleted, 1)

	err = bus.Handle(events.GenerationCompletedEvent, func(_ context.Context, event any) error {
		completed, ok := event.(*events.GenerationCompleted)
		if ok {
			received <- completed
		}

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.GenerationCompleted{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.GenerationCompletedEvent,
			Timestamp: time.Now(),
			RequestID: "req-42",
		},
		CorrelationID: "corr-1",
		NodeCount:     4,
	}

	require.NoError(t, bus.Publish(ctx, "req-42", event))

	select {
	case got := <-received:
		assert.Equal(t, "req-42", got.RequestID)
		assert.Equal(t, "corr-1", got.CorrelationID)
		assert.Equal(t, 4, got.NodeCount)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered: publish must still succeed and not block.
	err = bus.Publish(ctx, "req-1", events.GenerationStarted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.GenerationStartedEvent},
	})
	assert.NoError(t, err)
}
