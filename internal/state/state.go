package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileState records the last content this process wrote for a note
type FileState struct {
	MTime int64  `json:"mtime"`
	Hash  string `json:"hash"`
}

// State is the board state shared by every open note
type State struct {
	mu     sync.Mutex
	Files  map[string]*FileState `json:"files"`  // note id -> last write
	Pinned map[string]bool       `json:"pinned"` // note id -> always on top
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files:  make(map[string]*FileState),
		Pinned: make(map[string]bool),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	st := NewState()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, err
	}

	if st.Files == nil {
		st.Files = make(map[string]*FileState)
	}
	if st.Pinned == nil {
		st.Pinned = make(map[string]bool)
	}

	return st, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	s.mu.Lock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// HashContent returns the SHA256 of note content
func HashContent(content string) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256([]byte(content)))
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// RecordWrite remembers the content just written for a note
func (s *State) RecordWrite(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Files[id] = &FileState{
		MTime: time.Now().Unix(),
		Hash:  HashContent(content),
	}
}

// Unchanged reports whether content equals the last recorded write
func (s *State) Unchanged(id, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, ok := s.Files[id]
	return ok && fs.Hash == HashContent(content)
}

// HasChanged checks whether the file at path differs from the last
// content this process wrote for id. Files never written by us count
// as changed.
func (s *State) HasChanged(id, path string) (bool, error) {
	s.mu.Lock()
	fs, ok := s.Files[id]
	var last string
	if ok {
		last = fs.Hash
	}
	s.mu.Unlock()

	if !ok {
		return true, nil
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != last, nil
}

// Forget drops everything recorded for a note
func (s *State) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Files, id)
	delete(s.Pinned, id)
}

// IsPinned reports whether a note is kept on top
func (s *State) IsPinned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Pinned[id]
}

// TogglePin flips the pinned flag of a note and returns the new value
func (s *State) TogglePin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Pinned[id] {
		delete(s.Pinned, id)
		return false
	}
	s.Pinned[id] = true
	return true
}
