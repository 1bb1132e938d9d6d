package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/tui/components"
	tuinotify "github.com/colonyops/roster/internal/tui/notify"
)

const (
	notifyModalWidthPct  = 65
	notifyModalMinWidth  = 60
	notifyModalMaxHeight = 30
	notifyModalMargin    = 4
	notifyModalChrome    = 6 // title + divider + help + spacing
)

// NotificationModal displays a scrollable history of notifications.
type NotificationModal struct {
	bus      *tuinotify.Bus
	viewport viewport.Model
}

// NewNotificationModal creates a modal showing notification history.
func NewNotificationModal(ctx context.Context, bus *tuinotify.Bus, width, height int) *NotificationModal {
	modalWidth := calcNotificationModalWidth(width)
	modalHeight := calcNotificationModalHeight(height)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-4), // account for modal padding
		viewport.WithHeight(modalHeight-notifyModalChrome),
	)

	m := &NotificationModal{
		bus:      bus,
		viewport: vp,
	}

	m.refreshContent(ctx)
	return m
}

func (m *NotificationModal) refreshContent(ctx context.Context) {
	history, err := m.bus.History(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load notification history")
		m.viewport.SetContent(styles.ErrorStyle.Render(fmt.Sprintf("failed to load notifications: %v", err)))
		return
	}

	if len(history) == 0 {
		m.viewport.SetContent(styles.MutedStyle.Render("No notifications"))
		return
	}

	lines := make([]string, 0, len(history))
	for _, n := range history {
		lines = append(lines, formatNotification(n))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func formatNotification(n notify.Notification) string {
	ts := styles.MutedStyle.Render(n.CreatedAt.Format("15:04:05"))
	icon, _, msgStyle := levelStyle(n.Level)
	return fmt.Sprintf("%s %s %s", ts, msgStyle.Render(icon), msgStyle.Render(n.Message))
}

// ScrollUp scrolls the viewport up.
func (m *NotificationModal) ScrollUp() {
	m.viewport.ScrollUp(1)
}

// ScrollDown scrolls the viewport down.
func (m *NotificationModal) ScrollDown() {
	m.viewport.ScrollDown(1)
}

// Clear deletes all notifications and refreshes the view.
func (m *NotificationModal) Clear(ctx context.Context) error {
	if err := m.bus.Clear(ctx); err != nil {
		return err
	}
	m.refreshContent(ctx)
	return nil
}

// Overlay renders the notification modal centered over the background.
func (m *NotificationModal) Overlay(background string, width, height int) string {
	modalWidth := calcNotificationModalWidth(width)
	modalHeight := calcNotificationModalHeight(height)

	scrollInfo := ""
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		scrollInfo = styles.MutedStyle.Render(
			fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100),
		)
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	modalContent := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render("Notifications"+scrollInfo),
		divider,
		m.viewport.View(),
		styles.ModalHelpStyle.Render("[j/k] scroll  [D] clear all  [esc] close"),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(modalHeight).
		Render(modalContent)

	return components.Overlay(background, modal, width, height)
}

func calcNotificationModalWidth(termWidth int) int {
	available := max(termWidth-notifyModalMargin, 1)
	target := termWidth * notifyModalWidthPct / 100
	return min(max(target, notifyModalMinWidth), available)
}

func calcNotificationModalHeight(termHeight int) int {
	return max(min(termHeight-notifyModalMargin, notifyModalMaxHeight), notifyModalChrome+1)
}
