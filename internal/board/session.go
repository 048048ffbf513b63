package board

import (
	"sync"

	"github.com/WhalePrompt/stiky-note-md/internal/convert"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
)

// Session is one open note. Every mutation is persisted immediately on a
// best-effort basis: failures are logged and never returned.
type Session struct {
	board *Board

	mu      sync.Mutex
	note    *note.State
	loading bool
	closed  bool
	deleted bool
}

// ID returns the note identifier
func (s *Session) ID() string {
	return s.note.ID
}

// State returns a snapshot of the note state
func (s *Session) State() note.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.note
}

// Document returns the current document
func (s *Session) Document() convert.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.note.Document
}

// Markdown returns the current document serialized
func (s *Session) Markdown() string {
	return convert.SerializeDocument(s.Document())
}

// Title returns the first non-blank line of the note
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.note.Title()
}

// Theme returns the note colors
func (s *Session) Theme() note.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.note.Theme
}

// Geometry returns the note window position and size
func (s *Session) Geometry() note.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.note.Geometry
}

// Pinned reports whether the note is kept on top
func (s *Session) Pinned() bool {
	return s.board.state.IsPinned(s.ID())
}

// Deleted reports whether the note was deleted through this session
func (s *Session) Deleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleted
}

// SetMarkdown replaces the content with decoded Markdown and saves it
func (s *Session) SetMarkdown(text string) {
	s.SetDocument(convert.LoadDocument(text))
}

// SetDocument replaces the content and saves it
func (s *Session) SetDocument(doc convert.Document) {
	if len(doc.Blocks) == 0 {
		doc = convert.NewDocument()
	}

	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return
	}
	s.note.Document = doc
	s.mu.Unlock()

	s.Save()
}

// SetTheme changes the note colors and saves them. Invalid themes are
// ignored.
func (s *Session) SetTheme(t note.Theme) {
	if err := t.Validate(); err != nil {
		s.board.log.PersistError("theme", s.ID(), err)
		return
	}

	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return
	}
	s.note.Theme = t
	s.mu.Unlock()

	if err := s.board.store.WriteTheme(s.ID(), t); err != nil {
		s.board.log.PersistError("write theme", s.ID(), err)
	}
}

// CycleTheme advances to the next palette theme and returns it
func (s *Session) CycleTheme() note.Theme {
	next := note.NextInPalette(s.Theme())
	s.SetTheme(next)
	return next
}

// Move changes the window geometry and saves it
func (s *Session) Move(g note.Geometry) {
	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return
	}
	s.note.Geometry = g
	s.mu.Unlock()

	s.saveGeometry()
}

// Save writes the serialized content unless it matches the last write
func (s *Session) Save() {
	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return
	}
	id := s.note.ID
	markdown := s.note.Markdown()
	s.mu.Unlock()

	st := s.board.state
	if st.Unchanged(id, markdown) && s.board.store.Exists(id) {
		return
	}

	if err := s.board.store.WriteContent(id, markdown); err != nil {
		s.board.log.PersistError("write", id, err)
		return
	}
	st.RecordWrite(id, markdown)
	s.board.log.NoteSaved(id, len(markdown))
}

// Close saves content and geometry and releases the session. Closing a
// deleted or already closed session does nothing.
func (s *Session) Close() {
	s.Save()
	s.saveGeometry()

	s.mu.Lock()
	if s.closed || s.deleted {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.board.untrack(s.ID())
}

// Delete removes the note and its files once confirm returns true.
// A nil confirm counts as declined. It reports whether the note was
// deleted.
func (s *Session) Delete(confirm func() bool) bool {
	if confirm == nil || !confirm() {
		return false
	}

	s.mu.Lock()
	if s.deleted {
		s.mu.Unlock()
		return true
	}
	s.deleted = true
	s.mu.Unlock()

	id := s.ID()
	if err := s.board.store.Delete(id); err != nil {
		s.board.log.PersistError("delete", id, err)
	}
	s.board.state.Forget(id)
	s.board.untrack(id)
	s.board.log.NoteDeleted(id)
	return true
}

// TogglePin flips the always-on-top flag and returns the new value
func (s *Session) TogglePin() bool {
	return s.board.state.TogglePin(s.ID())
}

// Reload re-reads the note from disk, replacing in-memory content, theme
// and geometry. Nothing is written while reloading.
func (s *Session) Reload() error {
	content, err := s.board.store.ReadContent(s.ID())
	if err != nil {
		return err
	}
	s.reload(content)
	return nil
}

func (s *Session) reload(content string) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	id := s.ID()
	doc := convert.LoadDocument(content)
	theme := s.board.readTheme(id)
	geometry := s.board.readGeometry(id)

	s.mu.Lock()
	s.note.Document = doc
	s.note.Theme = theme
	s.note.Geometry = geometry
	s.loading = false
	s.mu.Unlock()

	s.board.state.RecordWrite(id, content)
}

func (s *Session) saveGeometry() {
	s.mu.Lock()
	if !s.writableLocked() {
		s.mu.Unlock()
		return
	}
	id := s.note.ID
	g := s.note.Geometry
	s.mu.Unlock()

	if err := s.board.store.WriteGeometry(id, g); err != nil {
		s.board.log.PersistError("write position", id, err)
	}
}

func (s *Session) writableLocked() bool {
	return !s.loading && !s.closed && !s.deleted
}
