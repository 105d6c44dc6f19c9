package ui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

var rendererCache sync.Map // map[int]*glamour.TermRenderer

// MarkdownRenderer returns a cached renderer for the given width, styled
// for the terminal's background. Width is clamped to 40-200.
func MarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	width = Clamp(width, 40, 200)

	if r, ok := rendererCache.Load(width); ok {
		return r.(*glamour.TermRenderer), nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, r)
	return r, nil
}

// RenderMarkdown renders a workflow body for a terminal of the given width.
func RenderMarkdown(body string, width int) (string, error) {
	r, err := MarkdownRenderer(width)
	if err != nil {
		return "", err
	}
	return r.Render(body)
}
