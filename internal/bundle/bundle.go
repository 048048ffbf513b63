package bundle

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
)

// Version is the bundle format version written by Export
const Version = 1

// Bundle is a portable snapshot of every note in a notes directory
type Bundle struct {
	Version  int       `yaml:"version"`
	Exported time.Time `yaml:"exported"`
	Notes    []Entry   `yaml:"notes"`
}

// Entry is one note in a bundle
type Entry struct {
	ID       string        `yaml:"id"`
	Theme    note.Theme    `yaml:"theme"`
	Geometry note.Geometry `yaml:"geometry"`
	Pinned   bool          `yaml:"pinned,omitempty"`
	Content  string        `yaml:"content"`
}

// Result summarizes an import
type Result struct {
	Imported []string
	Skipped  []string
}

// Export writes every stored note as a YAML bundle. Missing or malformed
// sidecar files export as defaults. st may be nil.
func Export(s *store.Store, st *state.State, w io.Writer) (int, error) {
	ids, err := s.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list notes: %w", err)
	}

	b := Bundle{
		Version:  Version,
		Exported: time.Now().UTC().Truncate(time.Second),
		Notes:    make([]Entry, 0, len(ids)),
	}

	for _, id := range ids {
		content, err := s.ReadContent(id)
		if err != nil {
			return 0, fmt.Errorf("failed to read note %s: %w", id, err)
		}

		theme, err := s.ReadTheme(id)
		if err != nil {
			theme = note.DefaultTheme()
		}
		geometry, err := s.ReadGeometry(id)
		if err != nil {
			geometry = note.DefaultGeometry()
		}

		b.Notes = append(b.Notes, Entry{
			ID:       id,
			Theme:    theme,
			Geometry: geometry,
			Pinned:   st != nil && st.IsPinned(id),
			Content:  content,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(b); err != nil {
		return 0, fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return 0, fmt.Errorf("failed to encode bundle: %w", err)
	}

	return len(b.Notes), nil
}

// Import restores notes from a YAML bundle. Notes that already exist are
// skipped unless overwrite is set. Invalid themes are replaced by the
// default theme. st may be nil.
func Import(s *store.Store, st *state.State, r io.Reader, overwrite bool) (Result, error) {
	var b Bundle
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, errors.New("empty bundle")
		}
		return Result{}, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if b.Version != Version {
		return Result{}, fmt.Errorf("unsupported bundle version %d", b.Version)
	}

	var res Result
	for _, e := range b.Notes {
		if !store.ValidID(e.ID) || (s.Exists(e.ID) && !overwrite) {
			res.Skipped = append(res.Skipped, e.ID)
			continue
		}

		theme := e.Theme
		if theme.Validate() != nil {
			theme = note.DefaultTheme()
		}

		if err := s.WriteContent(e.ID, e.Content); err != nil {
			return res, err
		}
		if err := s.WriteTheme(e.ID, theme); err != nil {
			return res, err
		}
		if err := s.WriteGeometry(e.ID, e.Geometry); err != nil {
			return res, err
		}

		if st != nil && st.IsPinned(e.ID) != e.Pinned {
			st.TogglePin(e.ID)
		}
		res.Imported = append(res.Imported, e.ID)
	}

	return res, nil
}
