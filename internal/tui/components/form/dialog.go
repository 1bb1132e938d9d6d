package form

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/styles"
)

// Dialog is a form container that manages focus cycling, submission, and
// cancellation across a set of form fields.
type Dialog struct {
	fields       []Field
	names        []string // parallel slice: value key for each field
	focusedField int
	submitted    bool
	cancelled    bool
	Title        string
	Help         string
}

// NewDialog creates a form dialog with the given fields and names.
// The first field is focused automatically.
func NewDialog(title string, fields []Field, names []string) *Dialog {
	d := &Dialog{
		fields: fields,
		names:  names,
		Title:  title,
		Help:   "tab: next  shift+tab: prev  enter: submit  esc: cancel",
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// Update handles key input for the dialog. Enter on the last field submits.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return d.updateFocusedField(msg)
	}

	switch keyMsg.String() {
	case "tab", "down":
		return d.advanceFocus()
	case "shift+tab", "up":
		return d.retreatFocus()
	case "enter":
		return d.advanceFocus()
	case "ctrl+s":
		d.submitted = true
		return d, nil
	case "esc":
		d.cancelled = true
		return d, nil
	}

	return d.updateFocusedField(msg)
}

// View renders the title, all fields, and help text.
func (d *Dialog) View() string {
	parts := make([]string, 0, len(d.fields)*2+3)
	if d.Title != "" {
		parts = append(parts, styles.ModalTitleStyle.Render(d.Title), "")
	}
	for i, field := range d.fields {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, field.View())
	}

	parts = append(parts, "", styles.FormHelpStyle.Render(d.Help))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Values returns a map of field names to field values.
func (d *Dialog) Values() map[string]string {
	result := make(map[string]string, len(d.fields))
	for i, field := range d.fields {
		result[d.names[i]] = field.Value()
	}
	return result
}

// Field returns the field registered under name.
func (d *Dialog) Field(name string) (Field, bool) {
	for i, n := range d.names {
		if n == name {
			return d.fields[i], true
		}
	}
	return nil, false
}

// SetErrors replaces every field's error with errs[name] and focuses the
// first field that has one.
func (d *Dialog) SetErrors(errs map[string]string) tea.Cmd {
	first := -1
	for i, field := range d.fields {
		msg := errs[d.names[i]]
		field.SetError(msg)
		if msg != "" && first < 0 {
			first = i
		}
	}
	if first < 0 {
		return nil
	}
	return d.focus(first)
}

// Submitted returns whether the form was submitted.
func (d *Dialog) Submitted() bool { return d.submitted }

// Cancelled returns whether the form was cancelled.
func (d *Dialog) Cancelled() bool { return d.cancelled }

// Reopen clears the submitted flag so the dialog can be submitted again,
// for example after the caller rejected the values.
func (d *Dialog) Reopen() { d.submitted = false }

func (d *Dialog) focus(i int) tea.Cmd {
	if i == d.focusedField {
		return nil
	}
	d.fields[d.focusedField].Blur()
	d.focusedField = i
	return d.fields[i].Focus()
}

func (d *Dialog) advanceFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	next := d.focusedField + 1
	if next >= len(d.fields) {
		// Past the last field: submit
		d.submitted = true
		return d, nil
	}

	return d, d.focus(next)
}

func (d *Dialog) retreatFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 || d.focusedField == 0 {
		return d, nil
	}
	return d, d.focus(d.focusedField - 1)
}

func (d *Dialog) updateFocusedField(msg tea.Msg) (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	var cmd tea.Cmd
	d.fields[d.focusedField], cmd = d.fields[d.focusedField].Update(msg)
	return d, cmd
}
