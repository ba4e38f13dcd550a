package widget

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// rendererPools caches glamour renderers keyed by "style:width". Each key
// maps to a sync.Pool so concurrent builds get their own instance.
var (
	rendererPoolMu sync.Mutex
	rendererPools  = make(map[string]*sync.Pool)
)

func getRenderer(style string, width int) (*glamour.TermRenderer, error) {
	key := fmt.Sprintf("%s:%d", style, width)
	rendererPoolMu.Lock()
	pool, ok := rendererPools[key]
	if !ok {
		pool = &sync.Pool{}
		rendererPools[key] = pool
	}
	rendererPoolMu.Unlock()

	if r, _ := pool.Get().(*glamour.TermRenderer); r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create renderer for %s: %w", key, err)
	}
	return r, nil
}

func putRenderer(style string, width int, r *glamour.TermRenderer) {
	key := fmt.Sprintf("%s:%d", style, width)
	rendererPoolMu.Lock()
	pool := rendererPools[key]
	rendererPoolMu.Unlock()
	if pool != nil {
		pool.Put(r)
	}
}

// renderMarkdown returns the rendered source as plain lines, with glamour's
// styling stripped and its right padding trimmed. Rendering failures fall
// back to the raw source.
func renderMarkdown(source, style string, width int) []string {
	if width < 20 {
		width = 80
	}
	rendered := source
	if r, err := getRenderer(style, width); err == nil {
		if out, err := r.Render(source); err == nil {
			rendered = out
		}
		putRenderer(style, width, r)
	}

	lines := strings.Split(strings.Trim(ansi.Strip(rendered), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines
}

type markdownKey struct {
	source string
	style  string
	width  int
}
