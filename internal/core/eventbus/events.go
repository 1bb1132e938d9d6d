// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within roster.
package eventbus

import (
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/core/student"
)

// Event names a kind of event carried by the bus.
type Event string

// Keep list sorted A-Z.
const (
	EventAuthChanged           Event = "auth.changed"
	EventNotificationPublished Event = "notification.published"
	EventStudentCreated        Event = "student.created"
	EventStudentDeleted        Event = "student.deleted"
	EventStudentUpdated        Event = "student.updated"
	EventStudentsBulkDeleted   Event = "students.bulk-deleted"
	EventStudentsRefreshed     Event = "students.refreshed"
	EventTuiStarted            Event = "tui.started"
	EventTuiStopped            Event = "tui.stopped"
)

// AuthChangedPayload is emitted when a user signs in or out. User is nil
// after sign out.
type AuthChangedPayload struct {
	User *identity.User
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// StudentCreatedPayload is emitted after the API accepted a new record.
type StudentCreatedPayload struct {
	Record student.Record
}

// StudentUpdatedPayload is emitted after the API accepted an update.
type StudentUpdatedPayload struct {
	Record student.Record
}

// StudentDeletedPayload is emitted after a single record was deleted.
type StudentDeletedPayload struct {
	ID string
}

// StudentsBulkDeletedPayload is emitted once every deletion of a bulk
// request has completed.
type StudentsBulkDeletedPayload struct {
	Deleted int
	Failed  int
}

// StudentsRefreshedPayload is emitted when a refetch replaced the cache.
type StudentsRefreshedPayload struct {
	Count int
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
