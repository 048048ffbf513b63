package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/WhalePrompt/stiky-note-md/internal/convert"
	"github.com/WhalePrompt/stiky-note-md/internal/logger"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/preview"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
	"github.com/WhalePrompt/stiky-note-md/internal/watch"
)

// maxNoteSize bounds PUT bodies
const maxNoteSize = 1 << 20

// Server serves browser previews of the notes in a store
type Server struct {
	store    *store.Store
	state    *state.State
	theme    note.Theme
	log      *logger.Logger
	hub      *hub
	router   *mux.Router
	upgrader websocket.Upgrader
}

// Summary is the listing entry of one note
type Summary struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Theme    note.Theme    `json:"theme"`
	Geometry note.Geometry `json:"geometry"`
	Pinned   bool          `json:"pinned"`
}

// New creates a preview server. st and log may be nil.
func New(s *store.Store, st *state.State, theme note.Theme, log *logger.Logger) *Server {
	if st == nil {
		st = state.NewState()
	}
	if log == nil {
		log = logger.Discard()
	}

	srv := &Server{
		store: s,
		state: st,
		theme: theme,
		log:   log,
		hub:   newHub(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHost,
		},
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(loggerMiddleware(s.log))

	r.HandleFunc("/notes", s.handleList).Methods("GET")
	r.HandleFunc("/notes/{id}", s.handlePreview).Methods("GET")
	r.HandleFunc("/notes/{id}/markdown", s.handleMarkdown).Methods("GET")
	r.HandleFunc("/notes/{id}", s.handlePut).Methods("PUT")
	r.HandleFunc("/notes/{id}", s.handleDelete).Methods("DELETE")
	r.HandleFunc("/notes/{id}/ws", s.handleWebSocket).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router = r
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server started", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down preview server")
	s.hub.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Watch forwards note change events to connected preview pages until ctx
// is done or events is closed
func (s *Server) Watch(ctx context.Context, events <-chan watch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Op == watch.Removed {
				s.hub.notify(Message{Type: TypeDeleted, ID: ev.ID})
			} else {
				s.hub.notify(Message{Type: TypeReload, ID: ev.ID})
			}
		}
	}
}

func (s *Server) summary(id string) (Summary, error) {
	content, err := s.store.ReadContent(id)
	if err != nil {
		return Summary{}, err
	}

	theme, err := s.store.ReadTheme(id)
	if err != nil {
		theme = s.theme
	}
	geometry, err := s.store.ReadGeometry(id)
	if err != nil {
		geometry = note.DefaultGeometry()
	}

	n := note.State{ID: id, Document: convert.LoadDocument(content)}
	return Summary{
		ID:       id,
		Title:    n.Title(),
		Theme:    theme,
		Geometry: geometry,
		Pinned:   s.state.IsPinned(id),
	}, nil
}

// noteID extracts and checks the {id} route variable
func (s *Server) noteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if !store.ValidID(id) {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return "", false
	}
	return id, true
}

func (s *Server) readError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	s.log.PersistError("read", id, err)
	writeError(w, http.StatusInternalServerError, "failed to read note")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List()
	if err != nil {
		s.log.PersistError("list", s.store.Dir, err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	notes := make([]Summary, 0, len(ids))
	for _, id := range ids {
		sum, err := s.summary(id)
		if err != nil {
			s.log.Skipped(id, err.Error())
			continue
		}
		notes = append(notes, sum)
	}

	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.noteID(w, r)
	if !ok {
		return
	}

	content, err := s.store.ReadContent(id)
	if err != nil {
		s.readError(w, id, err)
		return
	}

	theme, err := s.store.ReadTheme(id)
	if err != nil {
		theme = s.theme
	}

	n := note.State{ID: id, Document: convert.LoadDocument(content)}
	page, err := preview.RenderPage(preview.Page{
		Title:      n.Title(),
		Markdown:   content,
		Background: theme.Body,
		ReloadURL:  "/notes/" + id + "/ws",
	})
	if err != nil {
		s.log.RenderError("goldmark", err)
		writeError(w, http.StatusInternalServerError, "failed to render note")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	id, ok := s.noteID(w, r)
	if !ok {
		return
	}

	content, err := s.store.ReadContent(id)
	if err != nil {
		s.readError(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, content)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	id, ok := s.noteID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNoteSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "note too large")
		return
	}

	markdown := convert.Normalize(string(body))
	if err := s.store.WriteContent(id, markdown); err != nil {
		s.log.PersistError("write", id, err)
		writeError(w, http.StatusInternalServerError, "failed to save note")
		return
	}
	s.state.RecordWrite(id, markdown)
	s.log.NoteSaved(id, len(markdown))
	s.hub.notify(Message{Type: TypeReload, ID: id})

	sum, err := s.summary(id)
	if err != nil {
		s.readError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.noteID(w, r)
	if !ok {
		return
	}

	if !s.store.Exists(id) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	if err := s.store.Delete(id); err != nil {
		s.log.PersistError("delete", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	s.state.Forget(id)
	s.log.NoteDeleted(id)
	s.hub.notify(Message{Type: TypeDeleted, ID: id})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := s.noteID(w, r)
	if !ok {
		return
	}
	if !s.store.Exists(id) {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "id", id, "error", err)
		return
	}

	c := &client{id: id, conn: conn, send: make(chan []byte, 16)}
	s.hub.register(c)
	s.hub.send(c, Message{Type: TypeConnected, ID: id})

	go s.hub.writePump(c)
	go s.hub.readPump(c)
}

// sameHost accepts websocket connections from pages served by this server
// and from non-browser clients that send no Origin
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
