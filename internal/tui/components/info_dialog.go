package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/roster/internal/core/styles"
)

const (
	infoModalMaxHeight = 30
	infoModalMargin    = 4
	infoModalChrome    = 6 // title + divider + help + spacing
	infoModalMinWidth  = 50
)

// InfoStatus represents the status of an info item.
type InfoStatus int

const (
	InfoStatusNone InfoStatus = iota
	InfoStatusPass
	InfoStatusWarn
	InfoStatusFail
)

// InfoItem is a single labeled row in an info section.
type InfoItem struct {
	Label  string
	Value  string
	Status InfoStatus
}

// InfoSection groups related info items under a section title.
type InfoSection struct {
	Title string
	Items []InfoItem
}

// InfoDialog displays labeled values, such as the signed-in account.
type InfoDialog struct {
	title    string
	sections []InfoSection
	helpText string
	width    int
	viewport viewport.Model
}

func infoModalSize(width, height int) (int, int) {
	w := min(max(width*65/100, infoModalMinWidth), max(width-infoModalMargin, 1))
	h := max(min(height-infoModalMargin, infoModalMaxHeight), infoModalChrome+1)
	return w, h
}

// NewInfoDialog creates a new info dialog sized for a width x height screen.
func NewInfoDialog(title string, sections []InfoSection, helpText string, width, height int) *InfoDialog {
	modalWidth, modalHeight := infoModalSize(width, height)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-4),
		viewport.WithHeight(modalHeight-infoModalChrome),
	)

	d := &InfoDialog{
		title:    title,
		sections: sections,
		helpText: helpText,
		width:    modalWidth,
		viewport: vp,
	}
	d.viewport.SetContent(d.renderContent())
	return d
}

func (d *InfoDialog) renderContent() string {
	separator := styles.DividerStyle.Render(strings.Repeat("─", max(d.width-6, 1)))
	labelWidth := 0
	for _, section := range d.sections {
		for _, item := range section.Items {
			labelWidth = max(labelWidth, lipgloss.Width(item.Label))
		}
	}

	var lines []string
	for i, section := range d.sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if section.Title != "" {
			lines = append(lines, styles.FormTitleStyle.Render(section.Title), separator)
		}
		for _, item := range section.Items {
			lines = append(lines, formatInfoItem(item, labelWidth))
		}
	}

	return strings.Join(lines, "\n")
}

func formatInfoItem(item InfoItem, labelWidth int) string {
	label := styles.ModalTitleStyle.Render(Cell(item.Label, labelWidth))
	value := styles.CommandStyle.Render(item.Value)

	if icon := statusIcon(item.Status); icon != "" {
		return fmt.Sprintf("%s %s  %s", icon, label, value)
	}
	return fmt.Sprintf("%s  %s", label, value)
}

func statusIcon(s InfoStatus) string {
	switch s {
	case InfoStatusPass:
		return styles.SuccessStyle.Render("✔")
	case InfoStatusWarn:
		return styles.WarningStyle.Render("●")
	case InfoStatusFail:
		return styles.ErrorStyle.Render("✘")
	default:
		return ""
	}
}

// ScrollUp scrolls the viewport up.
func (d *InfoDialog) ScrollUp() { d.viewport.ScrollUp(1) }

// ScrollDown scrolls the viewport down.
func (d *InfoDialog) ScrollDown() { d.viewport.ScrollDown(1) }

// Overlay renders the dialog centered over the provided background.
func (d *InfoDialog) Overlay(background string, width, height int) string {
	modalWidth, modalHeight := infoModalSize(width, height)

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	modalContent := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(d.title),
		divider,
		d.viewport.View(),
		styles.ModalHelpStyle.Render(d.helpText),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(modalHeight).
		Render(modalContent)

	return Overlay(background, modal, width, height)
}
