package tui

import (
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/config"
	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/tui/components"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	// Ensure we have dimensions for modals
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	mainView := m.renderScreen(w, h)

	var content string
	switch {
	case m.state == stateStudentForm && m.studentForm != nil:
		content = components.Overlay(mainView, styles.ModalStyle.Render(m.studentForm.View()), w, h)
	case m.state == stateExporting && m.exportForm != nil:
		content = components.Overlay(mainView, styles.ModalStyle.Render(m.exportForm.View()), w, h)
	case m.state == stateConfirming:
		content = m.confirm.Overlay(mainView, w, h)
	case m.state == stateShowingHelp && m.helpDialog != nil:
		content = m.helpDialog.Overlay(mainView, w, h)
	case m.state == stateShowingNotifications && m.notificationModal != nil:
		content = m.notificationModal.Overlay(mainView, w, h)
	case m.state == stateShowingAccount && m.accountDialog != nil:
		content = m.accountDialog.Overlay(mainView, w, h)
	default:
		content = mainView
	}

	// Apply toast overlay on top of everything
	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderScreen renders header, body and footer for the current route.
func (m Model) renderScreen(w, h int) string {
	var body, help string
	switch m.screen {
	case screenLogin:
		body = lipgloss.Place(w, max(h-4, 1), lipgloss.Center, lipgloss.Center, m.login.View(m.spinner.View()))
		help = "f1 about • f2 contact • ctrl+c quit"
	case screenPage:
		body = m.page.View()
		help = "j/k scroll • esc back"
	default:
		body = m.renderRecords(w)
		help = m.keys.ShortHelp(
			config.ActionNew, config.ActionEdit, config.ActionSelect,
			config.ActionDelete, config.ActionExport,
		) + " • ? help"
	}

	footer := lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatus(),
		styles.HelpStyle.Render(help),
	)

	bodyHeight := max(h-lipgloss.Height(footer)-2, 1)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(w), "", body, footer)
}

// renderHeader renders the title bar with the signed-in user on the right.
func (m Model) renderHeader(w int) string {
	title := styles.HeaderStyle.Render("roster")

	var user string
	if m.user != nil {
		user = styles.HeaderUserStyle.Render(styles.IconUser + " " + m.user.Name())
		if m.user.DisplayName != "" && m.user.Email != "" {
			user += styles.MutedStyle.Render(" <" + m.user.Email + ">")
		}
	}

	gap := max(w-lipgloss.Width(title)-lipgloss.Width(user)-1, 1)
	return title + components.Pad(gap) + user
}

func (m Model) renderRecords(w int) string {
	if !m.loaded && m.op.status == opPending {
		return m.spinner.View() + " " + styles.MutedStyle.Render("Loading students…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderTable(m.list, m.cursor, w-2),
		"",
		renderPager(m.list),
	)
}

// renderStatus shows the state of the last network operation.
func (m Model) renderStatus() string {
	switch m.op.status {
	case opPending:
		return m.spinner.View() + " " + styles.MutedStyle.Render(m.op.label+"…")
	case opSucceeded:
		return styles.SuccessStyle.Render(styles.IconNotifySuccess + " " + m.op.label)
	case opFailed:
		return styles.ErrorStyle.Render(styles.IconNotifyError + " " + m.op.label)
	default:
		return ""
	}
}
