package diff

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/WhalePrompt/stiky-note-md/internal/convert"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
)

// Format represents the output format for diffs
type Format int

const (
	// FormatPlain emits a bare unified diff
	FormatPlain Format = iota
	// FormatTerminal renders the diff with glamour
	FormatTerminal
)

// Unified returns the unified diff between two texts, or "" when they are
// equal
func Unified(from, to, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(from), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(from, to, before, edits))
}

// Normalization returns the diff between a note as stored and the same
// note after a load/serialize round trip, i.e. what saving it again would
// change. It returns "" when the note is already canonical.
func Normalization(st *store.Store, id string, format Format) (string, error) {
	stored, err := st.ReadContent(id)
	if err != nil {
		return "", fmt.Errorf("failed to read note: %w", err)
	}

	name := id + store.ContentExt
	unified := Unified(name, name+" (normalized)", stored, convert.Normalize(stored))
	if unified == "" {
		return "", nil
	}

	switch format {
	case FormatPlain:
		return unified, nil
	case FormatTerminal:
		return Render(unified), nil
	default:
		return "", fmt.Errorf("unsupported diff format: %d", format)
	}
}

// Render wraps a unified diff in a fenced block and renders it with
// glamour, falling back to the fenced Markdown
func Render(unified string) string {
	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown
	}

	return rendered
}
