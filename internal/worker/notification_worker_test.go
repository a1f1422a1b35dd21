package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/service"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestNotificationWorker_DeliversQueuedEvents(t *testing.T) {
	inner := events.NewInMemoryDispatcher()
	w := NewNotificationWorker(inner, 8, zap.NewNop())
	sink := &recordingPublisher{}
	notifications := service.NewNotificationService(w, sink, zap.NewNop())

	StartNotificationWorker(w, notifications)

	require.NoError(t, w.Publish(context.Background(), events.New(events.EventOrderPlaced, "o1", "u1", nil)))
	require.NoError(t, w.Publish(context.Background(), events.New(events.EventProductDeleted, "p1", "u1", nil)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))

	assert.Equal(t, 2, sink.count())
}

func TestNotificationWorker_QueueFull(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 1, zap.NewNop())

	require.NoError(t, w.Publish(context.Background(), events.New(events.EventUserRegistered, "u1", "u1", nil)))
	err := w.Publish(context.Background(), events.New(events.EventUserRegistered, "u2", "u2", nil))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestNotificationWorker_PublishAfterStop(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 1, zap.NewNop())
	require.NoError(t, w.Stop(context.Background()))

	err := w.Publish(context.Background(), events.New(events.EventUserRegistered, "u1", "u1", nil))
	assert.ErrorIs(t, err, ErrQueueClosed)
	// A second stop is a no-op.
	require.NoError(t, w.Stop(context.Background()))
}
