package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhalePrompt/stiky-note-md/internal/board"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/preview"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
	"github.com/WhalePrompt/stiky-note-md/internal/watch"
)

func newTestBoard(t *testing.T, notes map[string]string) (*board.Board, *store.Store, boardModel) {
	t.Helper()

	s := store.New(t.TempDir())
	for id, content := range notes {
		require.NoError(t, s.WriteContent(id, content))
	}

	b := board.New(s)
	m := InitBoardModel(b, b.Startup(), preview.NewTerminal("notty", nil), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return b, s, m
}

func update(t *testing.T, m boardModel, msg tea.Msg) (boardModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	bm, ok := next.(boardModel)
	require.True(t, ok)
	return bm, cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestBoardTypingSaves(t *testing.T) {
	_, s, m := newTestBoard(t, nil)
	require.Len(t, m.panes, 1)
	id := m.panes[0].session.ID()

	m, _ = update(t, m, typed("Hello **world**"))

	content, err := s.ReadContent(id)
	require.NoError(t, err)
	assert.Equal(t, "Hello **world**", content)
	assert.Contains(t, m.View(), "Hello world")
}

func TestBoardSaveRewritesCanonical(t *testing.T) {
	_, s, m := newTestBoard(t, nil)
	id := m.panes[0].session.ID()

	m, _ = update(t, m, typed("__bold__"))
	m, cmd := update(t, m, keyMsg(tea.KeyCtrlS))
	assert.NotNil(t, cmd)
	assert.Equal(t, "Saved", m.status.text)
	assert.Equal(t, "**bold**", m.panes[0].editor.Value())

	content, err := s.ReadContent(id)
	require.NoError(t, err)
	assert.Equal(t, "**bold**", content)
}

func TestBoardPaneFocus(t *testing.T) {
	_, _, m := newTestBoard(t, map[string]string{"a": "first", "b": "second"})
	require.Len(t, m.panes, 2)
	assert.Equal(t, 0, m.focus)
	assert.True(t, m.panes[0].editor.Focused())

	m, _ = update(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, 1, m.focus)
	assert.False(t, m.panes[0].editor.Focused())
	assert.True(t, m.panes[1].editor.Focused())

	m, _ = update(t, m, keyMsg(tea.KeyTab))
	assert.Equal(t, 0, m.focus)

	m, _ = update(t, m, keyMsg(tea.KeyShiftTab))
	assert.Equal(t, 1, m.focus)

	m, _ = update(t, m, keyMsg(tea.KeyCtrlN))
	require.Len(t, m.panes, 3)
	assert.Equal(t, 2, m.focus)
	assert.Equal(t, "New note", m.status.text)
	assert.Contains(t, m.View(), "New note")
}

func TestBoardDeleteConfirm(t *testing.T) {
	_, s, m := newTestBoard(t, map[string]string{"a": "first", "b": "second"})

	m, _ = update(t, m, keyMsg(tea.KeyCtrlD))
	assert.True(t, m.confirmDelete)
	assert.Contains(t, m.View(), "(y/n)")

	m, _ = update(t, m, typed("n"))
	assert.False(t, m.confirmDelete)
	assert.True(t, s.Exists("a"))

	m, _ = update(t, m, keyMsg(tea.KeyCtrlD))
	m, cmd := update(t, m, typed("y"))
	assert.False(t, isQuit(cmd))
	assert.False(t, s.Exists("a"))
	require.Len(t, m.panes, 1)
	assert.Equal(t, "b", m.panes[0].session.ID())
	assert.True(t, m.panes[0].editor.Focused())
}

func TestBoardDeleteLastNoteQuits(t *testing.T) {
	_, s, m := newTestBoard(t, map[string]string{"a": "only"})

	m, _ = update(t, m, keyMsg(tea.KeyCtrlD))
	m, cmd := update(t, m, typed("y"))
	assert.True(t, isQuit(cmd))
	assert.Empty(t, m.panes)

	for _, path := range s.Paths("a") {
		_, err := os.Stat(path)
		assert.True(t, errors.Is(err, os.ErrNotExist), path)
	}
}

func TestBoardQuitSavesAll(t *testing.T) {
	b, s, m := newTestBoard(t, map[string]string{"a": "first", "b": "second"})

	m, _ = update(t, m, typed("x"))
	_, cmd := update(t, m, keyMsg(tea.KeyEsc))
	assert.True(t, isQuit(cmd))
	assert.Empty(t, b.Sessions())

	content, err := s.ReadContent("a")
	require.NoError(t, err)
	assert.Equal(t, "firstx", content)

	for _, id := range []string{"a", "b"} {
		g, err := s.ReadGeometry(id)
		require.NoError(t, err)
		assert.Equal(t, note.DefaultGeometry(), g)
	}
}

func TestBoardCopyMarkdown(t *testing.T) {
	_, _, m := newTestBoard(t, map[string]string{"a": "~~done~~ <u>u</u>"})

	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}
	m, _ = update(t, m, keyMsg(tea.KeyCtrlY))
	assert.Equal(t, "~~done~~ <u>u</u>", copied)
	assert.Equal(t, "Copied markdown to clipboard", m.status.text)

	m.copy = func(string) error { return errors.New("no clipboard") }
	m, _ = update(t, m, keyMsg(tea.KeyCtrlY))
	assert.Equal(t, "Copy failed: no clipboard", m.status.text)
}

func TestBoardPinAndTheme(t *testing.T) {
	b, s, m := newTestBoard(t, map[string]string{"a": "Groceries"})

	m, _ = update(t, m, keyMsg(tea.KeyCtrlO))
	assert.True(t, b.State().IsPinned("a"))
	assert.Equal(t, "Pinned", m.status.text)
	assert.Contains(t, m.View(), "● Groceries")

	m, _ = update(t, m, keyMsg(tea.KeyCtrlO))
	assert.False(t, b.State().IsPinned("a"))

	before := m.panes[0].session.Theme()
	m, _ = update(t, m, keyMsg(tea.KeyCtrlT))
	after := m.panes[0].session.Theme()
	assert.Equal(t, note.NextInPalette(before), after)

	theme, err := s.ReadTheme("a")
	require.NoError(t, err)
	assert.Equal(t, after, theme)
}

func TestBoardPreviewToggle(t *testing.T) {
	_, _, m := newTestBoard(t, map[string]string{"a": "Hello **world**"})

	m, _ = update(t, m, keyMsg(tea.KeyCtrlP))
	assert.True(t, m.showPreview)
	assert.Contains(t, m.View(), "world")

	m, _ = update(t, m, keyMsg(tea.KeyCtrlP))
	assert.False(t, m.showPreview)
}

func TestBoardExternalChanges(t *testing.T) {
	_, s, m := newTestBoard(t, map[string]string{"a": "first", "b": "second"})

	require.NoError(t, s.WriteContent("b", "changed *outside*"))
	m, _ = update(t, m, noteEventMsg{ID: "b", Op: watch.Changed})
	assert.Equal(t, "changed *outside*", m.panes[1].editor.Value())

	// the focused note is left alone
	require.NoError(t, s.WriteContent("a", "clobbered"))
	m, _ = update(t, m, noteEventMsg{ID: "a", Op: watch.Changed})
	assert.Equal(t, "first", m.panes[0].editor.Value())

	require.NoError(t, s.WriteContent("c", "brand new"))
	m, _ = update(t, m, noteEventMsg{ID: "c", Op: watch.Changed})
	require.Len(t, m.panes, 3)
	assert.Equal(t, "c", m.panes[2].session.ID())
	assert.Equal(t, 0, m.focus)

	require.NoError(t, os.Remove(filepath.Join(s.Dir, "b.md")))
	m, _ = update(t, m, noteEventMsg{ID: "b", Op: watch.Removed})
	assert.Contains(t, m.status.text, "removed on disk")
	assert.Len(t, m.panes, 3)
}

func TestWaitForEvent(t *testing.T) {
	assert.Nil(t, waitForEvent(nil))

	events := make(chan watch.Event, 1)
	events <- watch.Event{ID: "a", Op: watch.Changed}
	msg := waitForEvent(events)()
	assert.Equal(t, noteEventMsg{ID: "a", Op: watch.Changed}, msg)

	close(events)
	assert.Nil(t, waitForEvent(events)())
}

func TestStatusClearIgnoresStaleTimers(t *testing.T) {
	_, _, m := newTestBoard(t, nil)

	m.setStatus("first", 0)
	stale := m.status.id
	m.setStatus("second", 0)

	m, _ = update(t, m, statusClearMsg{id: stale})
	assert.Equal(t, "second", m.status.text)

	m, _ = update(t, m, statusClearMsg{id: m.status.id})
	assert.Empty(t, m.status.text)
}

func TestTabLabelTruncates(t *testing.T) {
	b, _, _ := newTestBoard(t, nil)
	s := b.NewSession()

	assert.Equal(t, "New note", tabLabel(s))

	s.SetMarkdown("A very long title that keeps going")
	label := tabLabel(s)
	assert.Equal(t, maxTabTitle, len([]rune(label)))
	assert.Equal(t, "A very long title…", label)
}
