package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/WhalePrompt/stiky-note-md/internal/bundle"
	"github.com/WhalePrompt/stiky-note-md/internal/convert"
	"github.com/WhalePrompt/stiky-note-md/internal/diff"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/preview"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
)

// ErrAborted is returned when the user declines a confirmation
var ErrAborted = errors.New("aborted")

func checkID(s *store.Store, id string) error {
	if !store.ValidID(id) {
		return fmt.Errorf("invalid note id %q", id)
	}
	if !s.Exists(id) {
		return fmt.Errorf("note %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// List prints every stored note with its title, colors and pin flag
func List(env *Env) error {
	ids, err := env.Store.List()
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if len(ids) == 0 {
		fmt.Fprintln(env.Out, styles.DimStyle.Render("No notes in "+env.Store.Dir))
		return nil
	}

	for _, id := range ids {
		content, err := env.Store.ReadContent(id)
		if err != nil {
			env.Log.Skipped(id, err.Error())
			continue
		}
		theme, err := env.Store.ReadTheme(id)
		if err != nil {
			theme = env.Config.Theme()
		}

		n := note.State{ID: id, Document: convert.LoadDocument(content)}
		title := n.Title()
		if title == "" {
			title = styles.DimStyle.Render("(empty)")
		}

		pin := " "
		if env.State.IsPinned(id) {
			pin = styles.HighlightStyle.Render("●")
		}

		fmt.Fprintf(env.Out, "%s %s %s  %s\n", styles.Swatch(theme), pin, styles.DimStyle.Render(id), styles.ValueStyle.Render(title))
	}
	return nil
}

// Show prints a note rendered for the terminal, or as a standalone HTML
// page
func Show(env *Env, id string, html bool, width int) error {
	if err := checkID(env.Store, id); err != nil {
		return err
	}

	content, err := env.Store.ReadContent(id)
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}

	if html {
		theme, err := env.Store.ReadTheme(id)
		if err != nil {
			theme = env.Config.Theme()
		}
		page, err := preview.RenderPreviewHTML(content, theme.Body)
		if err != nil {
			return fmt.Errorf("failed to render note: %w", err)
		}
		_, err = io.WriteString(env.Out, page)
		return err
	}

	term := preview.NewTerminal(env.Config.GlamourStyle, env.Log)
	_, err = io.WriteString(env.Out, term.Render(content, width))
	return err
}

// Create stores a new note and returns its id. The text is normalized
// the same way the editor would save it.
func Create(env *Env, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("note text is empty")
	}

	b := env.Board()
	s := b.NewSession()
	s.SetMarkdown(text)
	s.Close()

	if !env.Store.Exists(s.ID()) {
		return "", fmt.Errorf("failed to save note %s", s.ID())
	}
	return s.ID(), nil
}

// Cat writes the stored Markdown of a note as is
func Cat(env *Env, id string) error {
	if err := checkID(env.Store, id); err != nil {
		return err
	}

	content, err := env.Store.ReadContent(id)
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}
	_, err = io.WriteString(env.Out, content)
	return err
}

// Write replaces the content of a note with normalized text, creating the
// note with default colors and position when it does not exist
func Write(env *Env, id, text string) error {
	if !store.ValidID(id) {
		return fmt.Errorf("invalid note id %q", id)
	}

	created := !env.Store.Exists(id)
	markdown := convert.Normalize(text)
	if err := env.Store.WriteContent(id, markdown); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	env.State.RecordWrite(id, markdown)
	env.Log.NoteSaved(id, len(markdown))

	if created {
		if err := env.Store.WriteTheme(id, env.Config.Theme()); err != nil {
			return fmt.Errorf("failed to write theme: %w", err)
		}
		if err := env.Store.WriteGeometry(id, note.DefaultGeometry()); err != nil {
			return fmt.Errorf("failed to write position: %w", err)
		}
	}
	return nil
}

// Delete removes a note and its color and position files after confirm
// agrees
func Delete(env *Env, id string, confirm func() bool) error {
	if err := checkID(env.Store, id); err != nil {
		return err
	}

	s, err := env.Board().Open(id)
	if err != nil {
		return fmt.Errorf("failed to open note: %w", err)
	}
	if !s.Delete(confirm) {
		return ErrAborted
	}

	fmt.Fprintln(env.Out, styles.SuccessStyle.Render("✓ Deleted "+id))
	return nil
}

// FmtResult counts the notes Fmt looked at
type FmtResult struct {
	Checked   int
	Changed   int
	Rewritten int
}

// Fmt checks that notes are in canonical form, i.e. saving them again
// would not change them. With showDiff the differences are printed; with
// write the notes are rewritten. No ids means every note.
func Fmt(env *Env, ids []string, showDiff, write bool) (FmtResult, error) {
	var res FmtResult

	if len(ids) == 0 {
		var err error
		ids, err = env.Store.List()
		if err != nil {
			return res, fmt.Errorf("failed to list notes: %w", err)
		}
	}

	for _, id := range ids {
		if err := checkID(env.Store, id); err != nil {
			return res, err
		}
		res.Checked++

		unified, err := diff.Normalization(env.Store, id, diff.FormatPlain)
		if err != nil {
			return res, err
		}
		if unified == "" {
			continue
		}
		res.Changed++

		if showDiff {
			fmt.Fprint(env.Out, unified)
		} else if !write {
			fmt.Fprintln(env.Out, id+store.ContentExt)
		}

		if write {
			changed, err := formatNote(env, id)
			if err != nil {
				return res, err
			}
			if changed {
				res.Rewritten++
			}
		}
	}
	return res, nil
}

// formatNote rewrites a note in canonical form and reports whether
// anything changed
func formatNote(env *Env, id string) (bool, error) {
	content, err := env.Store.ReadContent(id)
	if err != nil {
		return false, fmt.Errorf("failed to read note: %w", err)
	}

	normalized := convert.Normalize(content)
	if normalized == content {
		return false, nil
	}
	if err := env.Store.WriteContent(id, normalized); err != nil {
		return false, fmt.Errorf("failed to write note: %w", err)
	}
	env.State.RecordWrite(id, normalized)
	env.Log.NoteSaved(id, len(normalized))
	return true, nil
}

// pruneNote deletes a blank note the way startup would
func pruneNote(env *Env, id string) error {
	content, err := env.Store.ReadContent(id)
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}
	if strings.TrimSpace(content) != "" {
		return fmt.Errorf("note %s is not blank", id)
	}
	if err := env.Store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	env.State.Forget(id)
	env.Log.NotePruned(id)
	return nil
}

// Export writes every note to path as a YAML bundle, or to Out when path
// is empty or "-"
func Export(env *Env, path string) (int, error) {
	if path == "" || path == "-" {
		return bundle.Export(env.Store, env.State, env.Out)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	n, err := bundle.Export(env.Store, env.State, f)
	if err != nil {
		return n, err
	}
	return n, f.Close()
}

// Import reads a YAML bundle from path, or from In when path is "-"
func Import(env *Env, path string, overwrite bool) (bundle.Result, error) {
	r := env.In
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return bundle.Result{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return bundle.Import(env.Store, env.State, r, overwrite)
}
