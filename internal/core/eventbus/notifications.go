package eventbus

import (
	"fmt"

	"github.com/colonyops/roster/internal/core/notify"
)

// Success messages shown after a mutation completes.
const (
	MsgStudentCreated = "Student created successfully!"
	MsgStudentUpdated = "Student updated successfully!"
	MsgStudentDeleted = "Student deleted successfully!"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeStudentCreated(func(StudentCreatedPayload) {
		r.notifyf(notify.LevelSuccess, MsgStudentCreated)
	})

	r.bus.SubscribeStudentUpdated(func(StudentUpdatedPayload) {
		r.notifyf(notify.LevelSuccess, MsgStudentUpdated)
	})

	r.bus.SubscribeStudentDeleted(func(StudentDeletedPayload) {
		r.notifyf(notify.LevelSuccess, MsgStudentDeleted)
	})

	r.bus.SubscribeStudentsBulkDeleted(func(p StudentsBulkDeletedPayload) {
		switch {
		case p.Failed == 0:
			r.notifyf(notify.LevelSuccess, "Deleted %s", plural(p.Deleted, "student"))
		case p.Deleted == 0:
			r.notifyf(notify.LevelError, "Failed to delete %s", plural(p.Failed, "student"))
		default:
			r.notifyf(notify.LevelWarning, "Deleted %s, %d failed", plural(p.Deleted, "student"), p.Failed)
		}
	})

	r.bus.SubscribeAuthChanged(func(p AuthChangedPayload) {
		if p.User == nil {
			r.notifyf(notify.LevelInfo, "Signed out")
			return
		}
		r.notifyf(notify.LevelInfo, "Signed in as %s", p.User.Name())
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
