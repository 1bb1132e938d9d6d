package tui

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/roster/internal/core/styles"
	"github.com/colonyops/roster/internal/roster"
)

// PageView shows one of the static markdown pages.
type PageView struct {
	name     string
	viewport viewport.Model
}

// NewPageView renders page name for a width x height body.
func NewPageView(name string, width, height int) *PageView {
	p := &PageView{name: name}
	p.Resize(width, height)
	return p
}

// Name returns the page name.
func (p *PageView) Name() string { return p.name }

// Resize re-renders the page for new dimensions.
func (p *PageView) Resize(width, height int) {
	p.viewport = viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)

	content, err := roster.RenderPage(p.name, width-2)
	if err != nil {
		log.Debug().Err(err).Str("page", p.name).Msg("failed to render page, showing raw content")
		content, _ = roster.Page(p.name)
	}
	p.viewport.SetContent(content)
}

// ScrollUp scrolls the page up.
func (p *PageView) ScrollUp() { p.viewport.ScrollUp(1) }

// ScrollDown scrolls the page down.
func (p *PageView) ScrollDown() { p.viewport.ScrollDown(1) }

// View renders the page.
func (p *PageView) View() string {
	title := styles.FormTitleStyle.Render(strings.ToUpper(p.name[:1]) + p.name[1:])
	return lipgloss.JoinVertical(lipgloss.Left, title, "", p.viewport.View())
}
