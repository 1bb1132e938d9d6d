// Package notify dispatches toast notifications to the TUI and records them.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/roster/internal/core/notify"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(notify.Notification)

// Bus is a synchronous in-process notification bus. Notifications are
// persisted first, then handed to subscribers inline.
type Bus struct {
	store  notify.Store
	log    zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
	nextID int
	subs   map[int]Subscriber
}

// NewBus creates a notification bus backed by the given store.
// If store is nil, notifications are dispatched to subscribers but not persisted.
func NewBus(store notify.Store, log zerolog.Logger) *Bus {
	return &Bus{
		store: store,
		log:   log,
		now:   time.Now,
		subs:  make(map[int]Subscriber),
	}
}

// Subscribe registers fn for every Publish and returns a function that
// removes it again.
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish persists n and dispatches it to all subscribers in subscription order.
func (b *Bus) Publish(ctx context.Context, n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}

	if b.store != nil {
		id, err := b.store.Save(context.WithoutCancel(ctx), n)
		if err != nil {
			b.log.Error().Err(err).Str("message", n.Message).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, 0, len(b.subs))
	for i := range b.nextID {
		if fn, ok := b.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

func (b *Bus) publishf(ctx context.Context, level notify.Level, format string, args ...any) {
	b.Publish(ctx, notify.Notification{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Successf publishes a success-level notification.
func (b *Bus) Successf(ctx context.Context, format string, args ...any) {
	b.publishf(ctx, notify.LevelSuccess, format, args...)
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(ctx context.Context, format string, args ...any) {
	b.publishf(ctx, notify.LevelInfo, format, args...)
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(ctx context.Context, format string, args ...any) {
	b.publishf(ctx, notify.LevelWarning, format, args...)
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(ctx context.Context, format string, args ...any) {
	b.publishf(ctx, notify.LevelError, format, args...)
}

// History returns all persisted notifications, newest first.
// Returns nil if no store is configured.
func (b *Bus) History(ctx context.Context) ([]notify.Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx)
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
