package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/WhalePrompt/stiky-note-md/internal/board"
	"github.com/WhalePrompt/stiky-note-md/internal/preview"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
	"github.com/WhalePrompt/stiky-note-md/internal/watch"
)

const (
	statusTimeout = 3 * time.Second
	maxTabTitle   = 18
)

// pane is one open note with its own editor
type pane struct {
	session *board.Session
	editor  textarea.Model
	last    string // editor value last handed to the session
}

type statusBarState struct {
	text string
	id   int
}

type boardModel struct {
	board  *board.Board
	term   *preview.Terminal
	events <-chan watch.Event
	copy   func(string) error

	panes         []*pane
	focus         int
	keys          keyMap
	help          help.Model
	viewport      viewport.Model
	showPreview   bool
	confirmDelete bool
	status        statusBarState
	width         int
	height        int
}

// InitBoardModel creates the note board over already opened sessions.
// events may be nil when the notes directory is not watched.
func InitBoardModel(b *board.Board, sessions []*board.Session, term *preview.Terminal, events <-chan watch.Event) boardModel {
	m := boardModel{
		board:    b,
		term:     term,
		events:   events,
		copy:     clipboard.WriteAll,
		keys:     newKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	for _, s := range sessions {
		m.panes = append(m.panes, m.newPane(s))
	}
	m.focusPane(0)
	return m
}

func (m boardModel) newPane(s *board.Session) *pane {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = "Take a note..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(m.editorWidth())
	ta.SetHeight(m.bodyHeight())
	ta.SetValue(s.Markdown())

	return &pane{session: s, editor: ta, last: ta.Value()}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.events))
}

// waitForEvent blocks on the watcher channel and delivers one event
func waitForEvent(events <-chan watch.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return noteEventMsg(ev)
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case noteEventMsg:
		cmd := m.handleNoteEvent(watch.Event(msg))
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case statusClearMsg:
		if msg.id == m.status.id {
			m.clearStatus()
		}
		return m, nil

	case tea.KeyMsg:
		if m.confirmDelete {
			return m.handleDeleteConfirm(msg)
		}
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	p := m.current()
	if p == nil {
		return m, nil
	}

	var cmd tea.Cmd
	if m.showPreview {
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	p.editor, cmd = p.editor.Update(msg)
	m.syncEditor(p)
	return m, cmd
}

// handleKey runs board level bindings. It reports false for keys that
// belong to the editor.
func (m *boardModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	p := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
		return tea.Quit, true

	case key.Matches(msg, m.keys.NextPane):
		m.focusPane(m.focus + 1)
		return nil, true

	case key.Matches(msg, m.keys.PrevPane):
		m.focusPane(m.focus - 1)
		return nil, true

	case key.Matches(msg, m.keys.New):
		m.panes = append(m.panes, m.newPane(m.board.NewSession()))
		m.focusPane(len(m.panes) - 1)
		return m.setStatus("New note", statusTimeout), true

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return nil, true
	}

	if p == nil {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		m.syncEditor(p)
		p.session.Save()
		p.editor.SetValue(p.session.Markdown())
		p.last = p.editor.Value()
		return m.setStatus("Saved", statusTimeout), true

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		m.refreshPreview()
		return nil, true

	case key.Matches(msg, m.keys.Theme):
		m.syncEditor(p)
		p.session.CycleTheme()
		return nil, true

	case key.Matches(msg, m.keys.Pin):
		if p.session.TogglePin() {
			return m.setStatus("Pinned", statusTimeout), true
		}
		return m.setStatus("Unpinned", statusTimeout), true

	case key.Matches(msg, m.keys.Copy):
		m.syncEditor(p)
		if err := m.copy(p.session.Markdown()); err != nil {
			return m.setStatus("Copy failed: "+err.Error(), statusTimeout), true
		}
		return m.setStatus("Copied markdown to clipboard", statusTimeout), true

	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete = true
		m.status.text = "Delete this note? It cannot be undone. (y/n)"
		return nil, true
	}

	return nil, false
}

func (m boardModel) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmDelete = false
		m.clearStatus()
		p := m.current()
		if p == nil {
			return m, nil
		}
		p.session.Delete(func() bool { return true })
		m.removePane(m.focus)
		if len(m.panes) == 0 {
			m.quit()
			return m, tea.Quit
		}
		return m, m.setStatus("Note deleted", statusTimeout)

	case "n", "N", "esc":
		m.confirmDelete = false
		m.clearStatus()
		return m, nil

	case "ctrl+c":
		m.quit()
		return m, tea.Quit
	}
	return m, nil
}

// handleNoteEvent applies an external change. The focused note belongs to
// the user and is never reloaded underneath them.
func (m *boardModel) handleNoteEvent(ev watch.Event) tea.Cmd {
	idx := m.indexOf(ev.ID)
	if idx >= 0 && idx == m.focus {
		return nil
	}

	switch ev.Op {
	case watch.Removed:
		if idx < 0 {
			return nil
		}
		return m.setStatus(fmt.Sprintf("%q was removed on disk", m.panes[idx].session.Title()), statusTimeout)

	case watch.Changed:
		if idx < 0 {
			s, err := m.board.Open(ev.ID)
			if err != nil {
				return nil
			}
			m.panes = append(m.panes, m.newPane(s))
			return m.setStatus(fmt.Sprintf("Opened %q", s.Title()), statusTimeout)
		}

		p := m.panes[idx]
		if err := p.session.Reload(); err != nil {
			return nil
		}
		p.editor.SetValue(p.session.Markdown())
		p.last = p.editor.Value()
	}
	return nil
}

// syncEditor hands edited text to the session, which saves it
func (m *boardModel) syncEditor(p *pane) {
	v := p.editor.Value()
	if v == p.last {
		return
	}
	p.last = v
	p.session.SetMarkdown(v)
}

func (m *boardModel) quit() {
	for _, p := range m.panes {
		m.syncEditor(p)
	}
	m.board.CloseAll()
}

func (m *boardModel) current() *pane {
	if m.focus < 0 || m.focus >= len(m.panes) {
		return nil
	}
	return m.panes[m.focus]
}

func (m *boardModel) indexOf(id string) int {
	for i, p := range m.panes {
		if p.session.ID() == id {
			return i
		}
	}
	return -1
}

// focusPane moves focus to pane i, wrapping around at both ends
func (m *boardModel) focusPane(i int) {
	if len(m.panes) == 0 {
		m.focus = 0
		return
	}
	if cur := m.current(); cur != nil {
		m.syncEditor(cur)
		cur.editor.Blur()
	}

	m.focus = (i%len(m.panes) + len(m.panes)) % len(m.panes)
	m.panes[m.focus].editor.Focus()
	m.refreshPreview()
}

func (m *boardModel) removePane(i int) {
	m.panes = append(m.panes[:i], m.panes[i+1:]...)
	if len(m.panes) == 0 {
		m.focus = 0
		return
	}
	if i >= len(m.panes) {
		i = len(m.panes) - 1
	}
	m.focus = i
	m.panes[m.focus].editor.Focus()
	m.refreshPreview()
}

func (m *boardModel) refreshPreview() {
	p := m.current()
	if !m.showPreview || p == nil || m.term == nil {
		return
	}
	m.viewport.SetContent(m.term.Render(p.session.Markdown(), m.editorWidth()))
	m.viewport.GotoTop()
}

// setStatus shows a transient message in the status bar.
// If duration > 0, the message auto-clears after that time.
func (m *boardModel) setStatus(text string, duration time.Duration) tea.Cmd {
	m.status.id++
	m.status.text = text
	id := m.status.id
	if duration <= 0 {
		return nil
	}
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return statusClearMsg{id: id}
	})
}

func (m *boardModel) clearStatus() {
	m.status.text = ""
}

// ─── Layout ──────────────────────────────────────────────────────────────────

func (m *boardModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.layout()
}

func (m *boardModel) layout() {
	for _, p := range m.panes {
		p.editor.SetWidth(m.editorWidth())
		p.editor.SetHeight(m.bodyHeight())
	}
	m.viewport.Width = m.editorWidth()
	m.viewport.Height = m.bodyHeight()
	m.refreshPreview()
}

// editorWidth leaves room for the pane border
func (m boardModel) editorWidth() int {
	return max(m.width-4, 10)
}

// bodyHeight leaves room for the tab bar, pane border, status line and help
func (m boardModel) bodyHeight() int {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 7
	}
	return max(m.height-4-helpLines, 3)
}

// ─── View ────────────────────────────────────────────────────────────────────

func (m boardModel) View() string {
	var b strings.Builder

	b.WriteString(m.tabsView())
	b.WriteString("\n")

	if p := m.current(); p != nil {
		ps := styles.ForTheme(p.session.Theme(), true)
		body := p.editor.View()
		if m.showPreview {
			body = m.viewport.View()
		}
		box := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ps.Border).
			Width(m.editorWidth() + 2)
		b.WriteString(box.Render(body))
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		b.WriteString(styles.WarningStyle.Render(m.status.text))
	case m.status.text != "":
		b.WriteString(styles.SuccessStyle.Render(m.status.text))
	case m.term != nil && m.term.Err() != nil:
		b.WriteString(styles.DimStyle.Render("Preview unavailable, showing raw markdown"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// tabsView renders one tab per note in the note's own colors
func (m boardModel) tabsView() string {
	tabs := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		focused := i == m.focus
		ps := styles.ForTheme(p.session.Theme(), focused)
		tabs = append(tabs, ps.Title.Render(tabLabel(p.session)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func tabLabel(s *board.Session) string {
	title := s.Title()
	if title == "" {
		title = "New note"
	}
	if r := []rune(title); len(r) > maxTabTitle {
		title = string(r[:maxTabTitle-1]) + "…"
	}
	if s.Pinned() {
		title = "● " + title
	}
	return title
}
