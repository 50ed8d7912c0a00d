package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdMu sync.Mutex
	// Cached per wrap width. WithAutoStyle is avoided: it can trigger
	// terminal capability queries that block on some terminals.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdMu.Lock()
	defer mdMu.Unlock()

	r := mdRenderers[width]
	if r == nil {
		style := "light"
		if lipgloss.HasDarkBackground() {
			style = "dark"
		}
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
