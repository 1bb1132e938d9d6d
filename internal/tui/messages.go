package tui

import (
	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/internal/roster"
)

// authChangedMsg is sent when the signed-in user changes. user is nil
// after sign-out.
type authChangedMsg struct {
	user *identity.User
}

// authResultMsg is sent when a sign-in or sign-up attempt finishes.
type authResultMsg struct {
	err error
}

// studentsLoadedMsg is sent when a refetch of the collection finishes.
type studentsLoadedMsg struct {
	records []student.Record
	err     error
}

// studentSavedMsg is sent when a create or update finishes.
type studentSavedMsg struct {
	record  student.Record
	editing bool
	err     error
}

// deleteStartedMsg is sent once a bulk delete has been issued.
type deleteStartedMsg struct {
	results <-chan roster.DeleteResult
	total   int
}

// deleteResultMsg carries the outcome of a single deletion.
type deleteResultMsg struct {
	result  roster.DeleteResult
	results <-chan roster.DeleteResult
}

// deleteFinishedMsg is sent when every deletion of a bulk delete completed.
type deleteFinishedMsg struct{}

// exportDoneMsg is sent when an export file was written.
type exportDoneMsg struct {
	path  string
	count int
	err   error
}

// notificationMsg carries a notification from an async tea.Cmd into the Update loop.
type notificationMsg struct {
	notification notify.Notification
	relayed      bool // read from the event bus relay; re-arm the listener
}
