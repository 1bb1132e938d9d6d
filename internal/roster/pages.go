package roster

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/colonyops/roster/internal/core/styles"
)

//go:embed pages/*.md
var pagesFS embed.FS

// Static pages.
const (
	PageAbout   = "about"
	PageContact = "contact"
)

// Page returns the markdown source of a static page.
func Page(name string) (string, error) {
	b, err := fs.ReadFile(pagesFS, "pages/"+strings.ToLower(name)+".md")
	if err != nil {
		return "", fmt.Errorf("unknown page %q", name)
	}
	return string(b), nil
}

// RenderPage renders a static page as styled terminal output wrapped at width.
func RenderPage(name string, width int) (string, error) {
	src, err := Page(name)
	if err != nil {
		return "", err
	}

	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := renderer.Render(src)
	if err != nil {
		return "", fmt.Errorf("render page %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}
