package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/service"
)

// ErrQueueFull is returned when an event cannot be buffered.
var ErrQueueFull = errors.New("event queue full")

// ErrQueueClosed is returned for events published after Stop.
var ErrQueueClosed = errors.New("event queue closed")

const deliveryTimeout = 10 * time.Second

// NotificationWorker buffers domain events and delivers them to the
// subscribed handlers on a background goroutine, so slow sinks such as Kafka
// never hold up the request that produced the event.
type NotificationWorker struct {
	inner  events.Dispatcher
	queue  chan events.Event
	logger *zap.Logger

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	started sync.Once
}

// NewNotificationWorker wraps inner with a queue of the given size.
func NewNotificationWorker(inner events.Dispatcher, size int, logger *zap.Logger) *NotificationWorker {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		inner:  inner,
		queue:  make(chan events.Event, size),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Publish enqueues the event. It never blocks.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrQueueClosed
	}
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping event", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
		return ErrQueueFull
	}
}

// Subscribe registers handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

// Start launches the delivery loop once.
func (w *NotificationWorker) Start() {
	w.started.Do(func() {
		go w.run()
	})
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := w.inner.Publish(ctx, event); err != nil {
			w.logger.Warn("deliver event", zap.String("event_id", event.ID), zap.Error(err))
		}
		cancel()
	}
}

// Stop closes the queue and waits for buffered events to drain or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	w.Start()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartNotificationWorker registers notification handlers and starts delivery.
func StartNotificationWorker(worker *NotificationWorker, notificationService *service.NotificationService) {
	if worker == nil {
		return
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	worker.Start()
}
