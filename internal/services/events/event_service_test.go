package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rogare/internal/interfaces"
)

func TestSubscribeAndPublish(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var mu sync.Mutex
	var received []interfaces.Event
	done := make(chan struct{})

	err := svc.Subscribe(interfaces.EventResearchProgress, func(ctx context.Context, event interfaces.Event) error {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		close(done)
		return nil
	})
	require.NoError(t, err)

	err = svc.Publish(context.Background(), interfaces.Event{
		Type:      interfaces.EventResearchProgress,
		SessionID: "session-1",
		Payload:   map[string]interface{}{"stage": "searching"},
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "session-1", received[0].SessionID)
	assert.Equal(t, "searching", received[0].Payload["stage"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestSubscribe_NilHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	assert.Error(t, svc.Subscribe(interfaces.EventSessionUpdated, nil))
}

func TestPublish_NoSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	assert.NoError(t, svc.Publish(context.Background(), interfaces.Event{
		Type: interfaces.EventSessionUpdated,
	}))
}

func TestPublish_HandlerErrorDoesNotPropagate(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	done := make(chan struct{})

	err := svc.Subscribe(interfaces.EventSessionUpdated, func(ctx context.Context, event interfaces.Event) error {
		defer close(done)
		return fmt.Errorf("handler exploded")
	})
	require.NoError(t, err)

	assert.NoError(t, svc.Publish(context.Background(), interfaces.Event{
		Type: interfaces.EventSessionUpdated,
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}
