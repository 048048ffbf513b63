package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/WhalePrompt/stiky-note-md/internal/logger"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
)

// DefaultDelay is how long the watcher waits for a burst of file events
// to settle before reporting them
const DefaultDelay = 100 * time.Millisecond

// Op is the kind of change seen on a note
type Op int

const (
	// Changed means a note artifact was created or written
	Changed Op = iota
	// Removed means the note content file is gone
	Removed
)

func (o Op) String() string {
	if o == Removed {
		return "removed"
	}
	return "changed"
}

// Event reports a change to one note
type Event struct {
	ID string
	Op Op
}

type pendingChange struct {
	op      Op
	content bool // the .md file was touched
	sidecar bool // a .color or .position file was touched
}

// Watcher reports external changes to the notes directory, one event per
// note per burst
type Watcher struct {
	dir    string
	delay  time.Duration
	log    *logger.Logger
	state  *state.State
	fs     *fsnotify.Watcher
	events chan Event
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDelay sets the debounce delay
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger for watcher errors
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithState makes the watcher drop content events whose file matches the
// last write recorded in st
func WithState(st *state.State) Option {
	return func(w *Watcher) {
		w.state = st
	}
}

// New starts watching dir, creating it if needed
func New(dir string, opts ...Option) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create notes directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:    dir,
		delay:  DefaultDelay,
		log:    logger.Discard(),
		fs:     fw,
		events: make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events returns the channel of debounced note events. It is closed when
// Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes file events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fs.Close()

	pending := make(map[string]*pendingChange)
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.collect(pending, ev) {
				flush = time.After(w.delay)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)

		case <-flush:
			flush = nil
			for id, c := range pending {
				delete(pending, id)
				if w.selfWrite(id, c) {
					w.log.Skipped(id, "own write")
					continue
				}
				select {
				case w.events <- Event{ID: id, Op: c.op}:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// Close stops the underlying watcher, which ends Run
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) collect(pending map[string]*pendingChange, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	id, ok := store.IDFromPath(ev.Name)
	if !ok {
		return false
	}

	c, ok := pending[id]
	if !ok {
		c = &pendingChange{}
		pending[id] = c
	}

	if filepath.Ext(ev.Name) != store.ContentExt {
		c.sidecar = true
		return true
	}

	c.content = true
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		c.op = Removed
	} else {
		c.op = Changed
	}
	return true
}

// selfWrite reports whether a burst only touched note content and the file
// still holds what this process last wrote
func (w *Watcher) selfWrite(id string, c *pendingChange) bool {
	if w.state == nil || c.sidecar || !c.content || c.op != Changed {
		return false
	}
	changed, err := w.state.HasChanged(id, filepath.Join(w.dir, id+store.ContentExt))
	if err != nil {
		return false
	}
	return !changed
}
