package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus is an asynchronous, buffered event bus. Publish never blocks:
// when the buffer is full the event is dropped and OnDrop hooks fire.
// Subscribers run on the goroutine that called Start.
type EventBus struct {
	ch    chan envelope
	mu    sync.RWMutex
	subs  map[Event][]func(any)
	hooks hooks
}

// New creates an EventBus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	for _, h := range snapshot(&bus.hooks.mu, bus.hooks.onSubscribe) {
		h(event)
	}
}

func subscribeTyped[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(p any) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

func (bus *EventBus) PublishAuthChanged(p AuthChangedPayload) { bus.send(EventAuthChanged, p) }
func (bus *EventBus) SubscribeAuthChanged(fn func(AuthChangedPayload)) {
	subscribeTyped(bus, EventAuthChanged, fn)
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribeTyped(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) PublishStudentCreated(p StudentCreatedPayload) { bus.send(EventStudentCreated, p) }
func (bus *EventBus) SubscribeStudentCreated(fn func(StudentCreatedPayload)) {
	subscribeTyped(bus, EventStudentCreated, fn)
}

func (bus *EventBus) PublishStudentUpdated(p StudentUpdatedPayload) { bus.send(EventStudentUpdated, p) }
func (bus *EventBus) SubscribeStudentUpdated(fn func(StudentUpdatedPayload)) {
	subscribeTyped(bus, EventStudentUpdated, fn)
}

func (bus *EventBus) PublishStudentDeleted(p StudentDeletedPayload) { bus.send(EventStudentDeleted, p) }
func (bus *EventBus) SubscribeStudentDeleted(fn func(StudentDeletedPayload)) {
	subscribeTyped(bus, EventStudentDeleted, fn)
}

func (bus *EventBus) PublishStudentsBulkDeleted(p StudentsBulkDeletedPayload) {
	bus.send(EventStudentsBulkDeleted, p)
}

func (bus *EventBus) SubscribeStudentsBulkDeleted(fn func(StudentsBulkDeletedPayload)) {
	subscribeTyped(bus, EventStudentsBulkDeleted, fn)
}

func (bus *EventBus) PublishStudentsRefreshed(p StudentsRefreshedPayload) {
	bus.send(EventStudentsRefreshed, p)
}

func (bus *EventBus) SubscribeStudentsRefreshed(fn func(StudentsRefreshedPayload)) {
	subscribeTyped(bus, EventStudentsRefreshed, fn)
}

func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) { bus.send(EventTuiStarted, p) }
func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	subscribeTyped(bus, EventTuiStarted, fn)
}

func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) { bus.send(EventTuiStopped, p) }
func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	subscribeTyped(bus, EventTuiStopped, fn)
}
