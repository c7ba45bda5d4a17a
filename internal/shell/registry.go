package shell

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/gyatt/internal/device"
	"github.com/srg/gyatt/internal/groutine"
	"github.com/srg/gyatt/internal/ringchan"
)

// NotificationSink consumes delivered notification records.
type NotificationSink func(n device.Notification)

// NotificationRegistry toggles notification subscriptions on the session's
// connection. Deliveries from the stack are never written directly: the stack
// callback only enqueues a record, and a single pump goroutine drains the
// queue into the sink.
type NotificationRegistry struct {
	queue  *ringchan.RingChannel[device.Notification]
	logger *logrus.Logger

	startOnce sync.Once
	done      chan struct{}
}

// NewNotificationRegistry creates a registry whose queue holds up to capacity
// undelivered records; on overflow the oldest record is dropped.
func NewNotificationRegistry(capacity int, logger *logrus.Logger) *NotificationRegistry {
	if logger == nil {
		logger = logrus.New()
	}
	return &NotificationRegistry{
		queue:  ringchan.New[device.Notification](capacity),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the pump that delivers queued records to sink. It returns
// immediately; the pump exits once Close is called and the queue is drained.
func (r *NotificationRegistry) Start(ctx context.Context, sink NotificationSink) {
	r.startOnce.Do(func() {
		groutine.Go(ctx, "notification-pump", func(ctx context.Context) {
			defer close(r.done)
			r.logger.WithField("goroutine", groutine.GetName(ctx)).Debug("Notification pump started")
			for n := range r.queue.C() {
				sink(n)
			}
		})
	})
}

// Close stops accepting records and waits for the pump to drain the queue.
// Close before Start only closes the queue.
func (r *NotificationRegistry) Close() {
	r.queue.Close()
	started := true
	r.startOnce.Do(func() { started = false })
	if started {
		<-r.done
	}
	m := r.queue.GetMetrics()
	r.logger.WithFields(logrus.Fields{
		"written":     m.Written,
		"overwritten": m.Overwritten,
	}).Debug("Notification queue closed")
}

// Toggle starts notifications on uuid when it has no active subscription and
// stops them otherwise. It reports whether notifications are now active. The
// session's subscription set only changes when the stack call succeeds.
func (r *NotificationRegistry) Toggle(ctx context.Context, sess *Session, uuid string) (bool, error) {
	if !sess.IsConnected() {
		return false, ErrNotConnected
	}
	key := device.NormalizeUUID(uuid)

	if sess.IsSubscribed(key) {
		if err := sess.conn.Unsubscribe(ctx, uuid); err != nil {
			return true, transportError("notify", err)
		}
		sess.subscriptions.Delete(key)
		r.logger.WithField("uuid", key).Debug("Notifications stopped")
		return false, nil
	}

	if err := sess.conn.Subscribe(ctx, uuid, r.deliver(uuid)); err != nil {
		return false, transportError("notify", err)
	}
	sess.subscriptions.Set(key, struct{}{})
	r.logger.WithField("uuid", key).Debug("Notifications started")
	return true, nil
}

// deliver returns the stack callback for uuid. It runs on the stack's own
// goroutine and touches nothing but the queue.
func (r *NotificationRegistry) deliver(uuid string) device.NotificationHandler {
	return func(data []byte) {
		n := device.Notification{UUID: uuid, Data: data, At: time.Now()}
		if dropped := r.queue.Send(n); dropped {
			r.logger.WithField("uuid", uuid).Warn("Notification queue full, dropped oldest record")
		}
	}
}

// FormatNotification renders a record as "[Notification] <uuid>: <hex>".
func FormatNotification(n device.Notification) string {
	return "[Notification] " + n.UUID + ": " + hex.EncodeToString(n.Data)
}
