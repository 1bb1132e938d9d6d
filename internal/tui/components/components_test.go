package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/roster/pkg/tuitest"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"pads", "Ann", 5, "Ann  "},
		{"exact", "Bob", 3, "Bob"},
		{"truncates", "Alexandria", 5, "Alex…"},
		{"zero width", "Ann", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cell(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.width, ansi.StringWidth(got))
		})
	}
}

func TestPad(t *testing.T) {
	assert.Empty(t, Pad(-1))
	assert.Len(t, Pad(3), 3)
	assert.Len(t, Pad(250), 250)
}

func TestConfirmModal(t *testing.T) {
	t.Run("enter confirms by default", func(t *testing.T) {
		m := NewConfirmModal("Delete", "Delete 2 students?", "Delete")
		m, _ = m.Update(tuitest.KeyEnter())
		assert.True(t, m.Confirmed())
		assert.False(t, m.Cancelled())
	})

	t.Run("switching to cancel then enter cancels", func(t *testing.T) {
		m := NewConfirmModal("Delete", "Delete 2 students?", "")
		m, _ = m.Update(tuitest.KeyRight())
		assert.False(t, m.ConfirmSelected())
		m, _ = m.Update(tuitest.KeyEnter())
		assert.True(t, m.Cancelled())
	})

	t.Run("esc cancels", func(t *testing.T) {
		m := NewConfirmModal("Delete", "?", "")
		m, _ = m.Update(tuitest.KeyEsc())
		assert.True(t, m.Cancelled())
	})

	t.Run("y confirms", func(t *testing.T) {
		m := NewConfirmModal("Delete", "?", "")
		m, _ = m.Update(tuitest.KeyPress('y'))
		assert.True(t, m.Confirmed())
	})

	t.Run("ignores non-key messages", func(t *testing.T) {
		m := NewConfirmModal("Delete", "?", "")
		m, _ = m.Update(tea.WindowSizeMsg{Width: 10})
		assert.False(t, m.Confirmed())
		assert.False(t, m.Cancelled())
	})

	t.Run("view", func(t *testing.T) {
		view := tuitest.StripANSI(NewConfirmModal("Delete students", "Delete 2 students?", "Delete").View())
		assert.Contains(t, view, "Delete students")
		assert.Contains(t, view, "Delete 2 students?")
		assert.Contains(t, view, "Cancel")
	})
}

func TestHelpDialog(t *testing.T) {
	d := NewHelpDialog("Keys", []HelpDialogSection{
		{Title: "Records", Entries: []HelpEntry{{Key: "n", Desc: "new student"}}},
	})
	view := tuitest.StripANSI(d.View())
	assert.Contains(t, view, "Records")
	assert.Contains(t, view, "new student")
}
