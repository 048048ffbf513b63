package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/WhalePrompt/stiky-note-md/internal/note"
)

// File extensions of the three artifacts stored per note
const (
	ContentExt  = ".md"
	ColorExt    = ".color"
	PositionExt = ".position"
)

// Extensions lists every per-note artifact
var Extensions = []string{ContentExt, ColorExt, PositionExt}

var (
	// ErrNotFound is returned when a note artifact does not exist
	ErrNotFound = fmt.Errorf("note file not found: %w", fs.ErrNotExist)
	// ErrInvalidID is returned for identifiers that cannot name a file
	ErrInvalidID = errors.New("invalid note id")
)

// Store keeps notes as flat sibling files in one directory
type Store struct {
	Dir string
}

// New creates a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// ValidID reports whether id can be used as a file name stem
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return false
	}
	return filepath.Base(id) == id
}

// Path returns the file path of one artifact of a note
func (s *Store) Path(id, ext string) string {
	return filepath.Join(s.Dir, id+ext)
}

// Paths returns the paths of every artifact of a note
func (s *Store) Paths(id string) []string {
	paths := make([]string, 0, len(Extensions))
	for _, ext := range Extensions {
		paths = append(paths, s.Path(id, ext))
	}
	return paths
}

func (s *Store) read(id, ext string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	data, err := os.ReadFile(s.Path(id, ext))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s%s: %w", id, ext, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read %s%s: %w", id, ext, err)
	}
	return string(data), nil
}

// write overwrites the whole file. It is not atomic.
func (s *Store) write(id, ext, content string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	if err := os.WriteFile(s.Path(id, ext), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s%s: %w", id, ext, err)
	}
	return nil
}

// ReadContent returns the stored Markdown of a note
func (s *Store) ReadContent(id string) (string, error) {
	return s.read(id, ContentExt)
}

// WriteContent stores the Markdown of a note
func (s *Store) WriteContent(id, markdown string) error {
	return s.write(id, ContentExt, markdown)
}

// ReadTheme returns the stored theme of a note
func (s *Store) ReadTheme(id string) (note.Theme, error) {
	line, err := s.read(id, ColorExt)
	if err != nil {
		return note.Theme{}, err
	}
	theme, err := note.ParseTheme(line)
	if err != nil {
		return note.Theme{}, fmt.Errorf("failed to parse %s%s: %w", id, ColorExt, err)
	}
	return theme, nil
}

// WriteTheme stores the theme of a note
func (s *Store) WriteTheme(id string, theme note.Theme) error {
	return s.write(id, ColorExt, note.FormatTheme(theme))
}

// ReadGeometry returns the stored window geometry of a note
func (s *Store) ReadGeometry(id string) (note.Geometry, error) {
	line, err := s.read(id, PositionExt)
	if err != nil {
		return note.Geometry{}, err
	}
	g, err := note.ParseGeometry(line)
	if err != nil {
		return note.Geometry{}, fmt.Errorf("failed to parse %s%s: %w", id, PositionExt, err)
	}
	return g, nil
}

// WriteGeometry stores the window geometry of a note
func (s *Store) WriteGeometry(id string, g note.Geometry) error {
	return s.write(id, PositionExt, note.FormatGeometry(g))
}

// Exists reports whether the note has a content file
func (s *Store) Exists(id string) bool {
	if !ValidID(id) {
		return false
	}
	_, err := os.Stat(s.Path(id, ContentExt))
	return err == nil
}

// Delete removes all artifacts of a note. Missing files are ignored.
func (s *Store) Delete(id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var errs []error
	for _, ext := range Extensions {
		if err := os.Remove(s.Path(id, ext)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s%s: %w", id, ext, err))
		}
	}
	return errors.Join(errs...)
}

// List returns the ids of all notes with a content file, sorted.
// A missing notes directory holds no notes.
func (s *Store) List() ([]string, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat notes directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("notes path %s is not a directory", s.Dir)
	}

	matches, err := doublestar.Glob(os.DirFS(s.Dir), "*"+ContentExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(m, ContentExt)
		if ValidID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// IDFromPath returns the note id of an artifact path and whether the
// path names a note artifact at all
func IDFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	for _, ext := range Extensions {
		if strings.HasSuffix(base, ext) {
			id := strings.TrimSuffix(base, ext)
			return id, ValidID(id)
		}
	}
	return "", false
}
