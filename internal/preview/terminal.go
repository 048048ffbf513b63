package preview

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/WhalePrompt/stiky-note-md/internal/logger"
)

// DefaultStyle is the glamour style used when none is configured
const DefaultStyle = "auto"

// Terminal renders note Markdown for the terminal with glamour. A renderer
// failure degrades to the raw Markdown and is reported once.
type Terminal struct {
	style string
	log   *logger.Logger

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer // word wrap -> renderer
	failed    error
}

// NewTerminal creates a terminal renderer for a glamour style name
func NewTerminal(style string, log *logger.Logger) *Terminal {
	if style == "" {
		style = DefaultStyle
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Terminal{
		style:     style,
		log:       log,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render renders md wrapped at width. Narrow widths use 80 columns.
func (t *Terminal) Render(md string, width int) string {
	if width < 20 {
		width = 80
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	r, err := t.renderer(width)
	if err != nil {
		t.report(err)
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		t.report(err)
		return md
	}
	return out
}

// Err returns the first renderer failure, if any
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.failed
}

func (t *Terminal) renderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := t.renderers[width]; ok {
		return r, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create renderer for %s:%d: %w", t.style, width, err)
	}
	t.renderers[width] = r
	return r, nil
}

func (t *Terminal) report(err error) {
	if t.failed != nil {
		return
	}
	t.failed = err
	t.log.RenderError("glamour", err)
}
