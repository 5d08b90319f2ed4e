// internal/controller/event-router/router.go
package eventrouter

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/common/metrics"
	"push-lifecycle/internal/models"

	"github.com/google/uuid"
)

var (
	ErrAlreadyStarted = errors.New("event router already started")
	ErrStopped        = errors.New("event router stopped")
)

// Sink receives every routed event, one at a time, in router order.
type Sink func(models.NotificationEvent)

// Router adapts the push service's three delivery paths into a single
// ordered stream of NotificationEvents. The cold-start message, if any, is
// always forwarded first; live messages that arrive while it is being
// fetched are held back and flushed right after it.
type Router struct {
	source models.PushService
	logger logger.Logger
	now    func() time.Time

	mu            sync.Mutex
	sink          Sink
	started       bool
	stopped       bool
	buffering     bool
	buffer        []models.NotificationEvent
	subscriptions []models.Subscription
}

func NewRouter(source models.PushService, log logger.Logger) *Router {
	return &Router{
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "event-router"}),
		now:    time.Now,
	}
}

// Start subscribes to the live sources, performs the one-time cold-start
// check and then switches to pass-through forwarding. It returns once the
// cold-start event (if any) has been handed to sink.
func (r *Router) Start(ctx context.Context, sink Sink) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.buffering = true
	r.sink = sink
	r.mu.Unlock()

	foreground, err := r.source.OnForegroundMessage(func(p models.RemotePayload) {
		r.deliver(r.toEvent(models.KindForeground, p))
	})
	if err != nil {
		r.Stop()
		return apperrors.NewSubscriptionFailedError("foreground", err)
	}
	r.track(foreground)

	opened, err := r.source.OnOpenedFromBackground(func(p models.RemotePayload) {
		r.deliver(r.toEvent(models.KindOpenedFromBackground, p))
	})
	if err != nil {
		r.Stop()
		return apperrors.NewSubscriptionFailedError("opened_from_background", err)
	}
	r.track(opened)

	initial, err := r.source.GetPendingColdStartMessage(ctx)
	if err != nil {
		// Treated as "not launched from a notification".
		r.logger.Warn("cold start check failed", map[string]interface{}{
			"error": err,
		})
		initial = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	if initial != nil {
		ev := r.toEvent(models.KindOpenedFromColdStart, *initial)
		r.logger.Info("app opened from cold start by notification", map[string]interface{}{
			"eventId": ev.ID,
		})
		r.sink(ev)
	}
	for _, ev := range r.buffer {
		r.sink(ev)
	}
	r.logger.Debug("live routing enabled", map[string]interface{}{
		"buffered": len(r.buffer),
	})
	r.buffer = nil
	r.buffering = false
	return nil
}

// Stop releases every subscription. Nothing is forwarded afterwards, even
// if a source keeps firing. Safe to call more than once.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true

	for _, ev := range r.buffer {
		metrics.EventsDropped.WithLabelValues(string(ev.Kind), "router_stopped").Inc()
	}
	r.buffer = nil
	subs := r.subscriptions
	r.subscriptions = nil
	r.mu.Unlock()

	// In-flight handlers may be waiting on mu; unsubscribe without it.
	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			r.logger.Warn("unsubscribe failed", map[string]interface{}{
				"error": err,
			})
		}
	}
	r.logger.Info("event router stopped", nil)
}

func (r *Router) track(sub models.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		_ = sub.Unsubscribe()
		return
	}
	r.subscriptions = append(r.subscriptions, sub)
}

func (r *Router) deliver(ev models.NotificationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.stopped:
		metrics.EventsDropped.WithLabelValues(string(ev.Kind), "router_stopped").Inc()
		r.logger.Debug("event dropped after stop", map[string]interface{}{
			"eventId": ev.ID,
			"kind":    string(ev.Kind),
		})
	case r.buffering:
		r.buffer = append(r.buffer, ev)
	default:
		r.sink(ev)
	}
}

func (r *Router) toEvent(kind models.EventKind, p models.RemotePayload) models.NotificationEvent {
	ev := models.NotificationEvent{
		ID:         uuid.New().String(),
		Kind:       kind,
		Data:       models.CopyData(p.Data),
		ReceivedAt: r.now().UTC(),
	}
	if kind == models.KindForeground && p.Notification != nil {
		content := *p.Notification
		ev.Content = &content
	}
	return ev
}
