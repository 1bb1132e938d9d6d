package form

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/styles"
)

// SelectField picks one of a fixed set of options with left/right.
type SelectField struct {
	options  []string
	selected int
	label    string
	err      string
	focused  bool
}

// NewSelectField creates a single-select field. defaultVal pre-selects the
// matching option; otherwise the first option is selected.
func NewSelectField(label string, options []string, defaultVal string) *SelectField {
	return &SelectField{
		options:  options,
		selected: max(slices.Index(options, defaultVal), 0),
		label:    label,
	}
}

func (f *SelectField) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused || len(f.options) == 0 {
		return f, nil
	}

	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return f, nil
	}

	switch keyMsg.String() {
	case "left", "h":
		f.selected = (f.selected - 1 + len(f.options)) % len(f.options)
		f.err = ""
	case "right", "l", "space":
		f.selected = (f.selected + 1) % len(f.options)
		f.err = ""
	}
	return f, nil
}

func (f *SelectField) View() string {
	titleStyle := styles.FormTitleBlurredStyle
	if f.focused {
		titleStyle = styles.FormTitleStyle
	}

	opts := make([]string, len(f.options))
	for i, opt := range f.options {
		if i == f.selected {
			opts[i] = styles.ModalButtonSelectedStyle.Render(opt)
		} else {
			opts[i] = styles.ModalButtonStyle.Render(opt)
		}
	}

	parts := []string{titleStyle.Render(f.label), strings.Join(opts, " ")}
	if f.err != "" {
		parts = append(parts, styles.FormErrorStyle.Render(f.err))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	borderStyle := styles.FormFieldStyle
	if f.focused {
		borderStyle = styles.FormFieldFocusedStyle
	}
	return borderStyle.Render(content)
}

func (f *SelectField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *SelectField) Blur() { f.focused = false }

func (f *SelectField) Focused() bool { return f.focused }

func (f *SelectField) Value() string {
	if len(f.options) == 0 {
		return ""
	}
	return f.options[f.selected]
}

// SetValue selects v when it is one of the options.
func (f *SelectField) SetValue(v string) {
	if i := slices.Index(f.options, v); i >= 0 {
		f.selected = i
	}
}

func (f *SelectField) Label() string       { return f.label }
func (f *SelectField) SetError(msg string) { f.err = msg }
func (f *SelectField) Error() string       { return f.err }
