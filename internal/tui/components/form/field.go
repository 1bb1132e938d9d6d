// Package form provides focusable input fields and a dialog that cycles
// focus between them.
package form

import tea "charm.land/bubbletea/v2"

// Field is the interface implemented by all form field types.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Value() string
	SetValue(v string)
	Label() string
	// SetError shows msg below the field. An empty msg clears it.
	SetError(msg string)
	Error() string
}
