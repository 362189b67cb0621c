package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storefront-ir/storefront-service/internal/events"
	"github.com/storefront-ir/storefront-service/internal/service"
)

const (
	defaultQueueSize = 256
	handleTimeout    = 5 * time.Second
)

// NotificationWorker delivers events to the notification service off the request path.
// A full queue falls back to delivering inline so no notification is dropped.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	wg            sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// StartNotificationWorker subscribes the worker to every notifying event and starts draining.
// Call Stop during shutdown to flush queued events.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if notifications == nil || dispatcher == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	w := &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
	}
	for _, eventType := range notifications.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *NotificationWorker) enqueue(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.stopped {
		select {
		case w.queue <- event:
			return nil
		default:
			w.logger.Warn("notification queue full, delivering inline", zap.String("event_id", event.ID))
		}
	}
	return w.deliver(context.WithoutCancel(ctx), event)
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for event := range w.queue {
		if err := w.deliver(context.Background(), event); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()
	return w.notifications.Handle(ctx, event)
}

// Stop stops accepting events and waits until queued ones are delivered.
func (w *NotificationWorker) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}
