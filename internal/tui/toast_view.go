package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/notify"
	"github.com/colonyops/roster/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders toast notifications and composites them as an overlay.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the toast stack, oldest at top and newest at bottom.
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t.notification))
	}

	return strings.Join(rendered, "\n")
}

func levelStyle(level notify.Level) (icon string, toastStyle, textStyle lipgloss.Style) {
	switch level {
	case notify.LevelSuccess:
		return styles.IconNotifySuccess, styles.ToastSuccessStyle, styles.SuccessStyle
	case notify.LevelWarning:
		return styles.IconNotifyWarning, styles.ToastWarningStyle, styles.WarningStyle
	case notify.LevelError:
		return styles.IconNotifyError, styles.ToastErrorStyle, styles.ErrorStyle
	default:
		return styles.IconNotifyInfo, styles.ToastInfoStyle, styles.CommandStyle
	}
}

func renderToast(n notify.Notification) string {
	icon, style, iconStyle := levelStyle(n.Level)
	return style.Width(toastWidth).Render(iconStyle.Render(icon) + " " + n.Message)
}

// Overlay composites the toast stack over background in the lower-right corner.
func (v *ToastView) Overlay(background string, width, height int) string {
	toastContent := v.View()
	if toastContent == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(toastContent)

	toastW := lipgloss.Width(toastContent)
	toastH := lipgloss.Height(toastContent)

	rightX := max(width-toastW-1, 0)
	bottomY := max(height-toastH-1, 0)

	toastLayer.X(rightX).Y(bottomY).Z(2)

	compositor := lipgloss.NewCompositor(bgLayer, toastLayer)
	return compositor.Render()
}
