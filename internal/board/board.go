package board

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/WhalePrompt/stiky-note-md/internal/logger"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
)

// Board owns the set of open note sessions over one notes directory
type Board struct {
	store *store.Store
	log   *logger.Logger
	state *state.State
	theme note.Theme

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Board
type Option func(*Board)

// WithLogger sets the logger used for swallowed failures
func WithLogger(l *logger.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.log = l
		}
	}
}

// WithState shares board state (write hashes, pins) with the caller
func WithState(st *state.State) Option {
	return func(b *Board) {
		if st != nil {
			b.state = st
		}
	}
}

// WithDefaultTheme sets the theme of new notes and of notes without a
// readable .color file
func WithDefaultTheme(t note.Theme) Option {
	return func(b *Board) {
		if t.Validate() == nil {
			b.theme = t
		}
	}
}

// New creates a board over the given store
func New(s *store.Store, opts ...Option) *Board {
	b := &Board{
		store:    s,
		log:      logger.Discard(),
		state:    state.NewState(),
		theme:    note.DefaultTheme(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Store returns the underlying note store
func (b *Board) Store() *store.Store {
	return b.store
}

// State returns the shared board state
func (b *Board) State() *state.State {
	return b.state
}

// DefaultTheme returns the theme given to new notes
func (b *Board) DefaultTheme() note.Theme {
	return b.theme
}

// Startup enumerates stored notes and opens a session for each one.
// Notes whose content is blank are deleted together with their sidecar
// files. When nothing could be opened a single fresh, unsaved session is
// returned so the caller always has a note to show.
func (b *Board) Startup() []*Session {
	ids, err := b.store.List()
	if err != nil {
		b.log.PersistError("list", b.store.Dir, err)
	}

	var sessions []*Session
	for _, id := range ids {
		content, err := b.store.ReadContent(id)
		if err != nil {
			b.log.PersistError("read", id, err)
			continue
		}

		if strings.TrimSpace(content) == "" {
			if err := b.store.Delete(id); err != nil {
				b.log.PersistError("prune", id, err)
			}
			b.state.Forget(id)
			b.log.NotePruned(id)
			continue
		}

		sessions = append(sessions, b.load(id, content))
	}

	if len(sessions) == 0 {
		sessions = append(sessions, b.NewSession())
	}

	return sessions
}

// NewSession opens a session for a brand new note. Nothing is written
// until the session is edited or closed.
func (b *Board) NewSession() *Session {
	s := &Session{
		board: b,
		note:  note.New(b.theme),
	}
	b.track(s)
	return s
}

// Open returns the session of an existing note, loading it from disk if
// it is not open yet
func (b *Board) Open(id string) (*Session, error) {
	if s := b.Session(id); s != nil {
		return s, nil
	}

	content, err := b.store.ReadContent(id)
	if err != nil {
		return nil, err
	}
	return b.load(id, content), nil
}

// Session returns the open session for id, or nil
func (b *Board) Session(id string) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sessions[id]
}

// Sessions returns every open session ordered by id
func (b *Board) Sessions() []*Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Session, 0, len(b.sessions))
	for _, s := range b.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

// CloseAll saves and closes every open session
func (b *Board) CloseAll() {
	for _, s := range b.Sessions() {
		s.Close()
	}
}

// SaveState persists the board state, logging failures
func (b *Board) SaveState(path string) {
	if path == "" {
		return
	}
	if err := b.state.Save(path); err != nil {
		b.log.StateError("save", err)
	}
}

func (b *Board) load(id, content string) *Session {
	s := &Session{
		board: b,
		note: &note.State{
			ID:       id,
			Theme:    b.theme,
			Geometry: note.DefaultGeometry(),
		},
	}
	s.reload(content)
	b.track(s)
	b.log.NoteLoaded(id, len(content))
	return s
}

// readTheme falls back to the board theme on any failure
func (b *Board) readTheme(id string) note.Theme {
	theme, err := b.store.ReadTheme(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.log.PersistError("read theme", id, err)
		}
		return b.theme
	}
	return theme
}

// readGeometry falls back to the default geometry on any failure
func (b *Board) readGeometry(id string) note.Geometry {
	g, err := b.store.ReadGeometry(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.log.PersistError("read position", id, err)
		}
		return note.DefaultGeometry()
	}
	return g
}

func (b *Board) track(s *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[s.ID()] = s
}

func (b *Board) untrack(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, id)
}
