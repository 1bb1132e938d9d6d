package components

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/styles"
)

// ConfirmModal is a confirm/cancel dialog with two buttons.
type ConfirmModal struct {
	title           string
	message         string
	confirmLabel    string
	confirmSelected bool
	confirmed       bool
	cancelled       bool
}

// NewConfirmModal creates a confirmation modal with the confirm button selected.
func NewConfirmModal(title, message, confirmLabel string) ConfirmModal {
	if confirmLabel == "" {
		confirmLabel = "Confirm"
	}
	return ConfirmModal{
		title:           title,
		message:         message,
		confirmLabel:    confirmLabel,
		confirmSelected: true,
	}
}

// Update handles input for the confirmation modal.
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "left", "right", "tab", "h", "l":
		m.confirmSelected = !m.confirmSelected
	case "enter":
		if m.confirmSelected {
			m.confirmed = true
		} else {
			m.cancelled = true
		}
	case "y", "Y":
		m.confirmed = true
	case "n", "N", "esc":
		m.cancelled = true
	}

	return m, nil
}

// View renders the modal box.
func (m ConfirmModal) View() string {
	confirmStyle, cancelStyle := styles.ModalButtonStyle, styles.ModalButtonSelectedStyle
	if m.confirmSelected {
		confirmStyle, cancelStyle = styles.ModalButtonSelectedStyle, styles.ModalButtonStyle
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		confirmStyle.Render(m.confirmLabel), "  ", cancelStyle.Render("Cancel"))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  y/n  esc cancel"),
	)

	return styles.ModalStyle.Render(content)
}

// Overlay renders the modal centered over background.
func (m ConfirmModal) Overlay(background string, width, height int) string {
	return Overlay(background, m.View(), width, height)
}

// ConfirmSelected returns true if the confirm button is selected.
func (m ConfirmModal) ConfirmSelected() bool { return m.confirmSelected }

// Confirmed returns true if user confirmed.
func (m ConfirmModal) Confirmed() bool { return m.confirmed }

// Cancelled returns true if user cancelled.
func (m ConfirmModal) Cancelled() bool { return m.cancelled }
