package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const maxCachedPad = 200

// Cache for padding strings to avoid strings.Repeat allocations in table rows.
var (
	paddingCache [maxCachedPad + 1]string
	paddingOnce  sync.Once
)

func initPaddingCache() {
	for i := 1; i <= maxCachedPad; i++ {
		paddingCache[i] = strings.Repeat(" ", i)
	}
}

// Pad returns a string of n spaces.
func Pad(n int) string {
	if n <= 0 {
		return ""
	}
	if n <= maxCachedPad {
		paddingOnce.Do(initPaddingCache)
		return paddingCache[n]
	}
	return strings.Repeat(" ", n)
}

// Cell fits s into exactly width display columns, truncating with an
// ellipsis or padding on the right. ANSI sequences in s are preserved.
func Cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(s)
	if w > width {
		s = ansi.Truncate(s, width, "…")
		w = ansi.StringWidth(s)
	}
	return s + Pad(width-w)
}
