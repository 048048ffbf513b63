package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/WhalePrompt/stiky-note-md/internal/convert"
	"github.com/WhalePrompt/stiky-note-md/internal/note"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
)

// BrowseData holds every stored note and its status
type BrowseData struct {
	Notes []NoteInfo
}

// NoteInfo describes one stored note
type NoteInfo struct {
	ID        string
	Title     string
	Theme     note.Theme
	Pinned    bool
	Canonical bool // saving the note again would not change it
	Size      int
}

// LoadBrowseData reads every note in the store. Notes that cannot be read
// are left out.
func LoadBrowseData(s *store.Store, st *state.State, defaultTheme note.Theme) (*BrowseData, error) {
	ids, err := s.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	data := &BrowseData{}
	for _, id := range ids {
		content, err := s.ReadContent(id)
		if err != nil {
			continue
		}
		theme, err := s.ReadTheme(id)
		if err != nil {
			theme = defaultTheme
		}

		n := note.State{ID: id, Document: convert.LoadDocument(content)}
		data.Notes = append(data.Notes, NoteInfo{
			ID:        id,
			Title:     n.Title(),
			Theme:     theme,
			Pinned:    st.IsPinned(id),
			Canonical: convert.Normalize(content) == content,
			Size:      len(content),
		})
	}
	return data, nil
}

type browseModel struct {
	table         table.Model
	viewport      viewport.Model
	data          *BrowseData
	err           error
	ready         bool
	showing       string // "", "preview" or "diff"
	showingPrompt bool
	content       string
	width         int
	height        int
	selected      *NoteInfo
	// Dependencies
	previewFunc func(id string, width int) (string, error)
	diffFunc    func(id string) (string, error)
	formatFunc  func(id string) error
	refreshFunc func()
}

// InitBrowseModel creates a new note browser model
func InitBrowseModel(
	previewFunc func(string, int) (string, error),
	diffFunc func(string) (string, error),
	formatFunc func(string) error,
	refreshFunc func(),
) browseModel {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Title", Width: 40},
		{Title: "ID", Width: 10},
		{Title: "Pinned", Width: 8},
		{Title: "Format", Width: 12},
		{Title: "Size", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(styles.Background)).
		Background(lipgloss.Color(styles.Yellow)).
		Bold(false)
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		Padding(1)

	return browseModel{
		table:       t,
		viewport:    vp,
		previewFunc: previewFunc,
		diffFunc:    diffFunc,
		formatFunc:  formatFunc,
		refreshFunc: refreshFunc,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(msg.Height - 10)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6

	case tea.KeyMsg:
		if m.showingPrompt {
			switch msg.String() {
			case "y":
				m.showingPrompt = false
				m.showing = ""
				return m, m.performFormat()
			case "n", "esc":
				m.showingPrompt = false
				return m, nil
			}
			return m, nil
		}

		if m.showing != "" {
			switch msg.String() {
			case "q", "esc":
				m.showing = ""
				return m, nil
			case "f":
				if m.showing == "diff" && m.selected != nil && !m.selected.Canonical {
					m.showingPrompt = true
				}
				return m, nil
			case "up", "k", "down", "j", "pgup", "pgdown":
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k", "down", "j":
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		case "enter":
			if n := m.selectedNote(); n != nil {
				m.selected = n
				m.showing = "preview"
				return m, m.loadPreview(n.ID)
			}
			return m, nil
		case "d":
			if n := m.selectedNote(); n != nil {
				m.selected = n
				m.showing = "diff"
				return m, m.loadDiff(n.ID)
			}
			return m, nil
		case "r":
			return m, func() tea.Msg { return RefreshBrowseMsg{} }
		}

	case BrowseMsg:
		m.ready = true
		m.data = msg.Data
		m.err = msg.Err

		if m.data != nil {
			rows := []table.Row{}
			for _, n := range m.data.Notes {
				pinned := ""
				if n.Pinned {
					pinned = "●"
				}
				format := "✓ canonical"
				if !n.Canonical {
					format = "→ fmt"
				}
				title := n.Title
				if title == "" {
					title = "(empty)"
				}
				rows = append(rows, table.Row{
					styles.Swatch(n.Theme),
					title,
					shortID(n.ID),
					pinned,
					format,
					fmt.Sprintf("%d B", n.Size),
				})
			}
			m.table.SetRows(rows)
			if m.table.Cursor() >= len(rows) {
				m.table.SetCursor(max(len(rows)-1, 0))
			}
		}

		return m, nil

	case PreviewMsg:
		m.content = msg.Content
		if msg.Err != nil {
			m.content = styles.ErrorStyle.Render("✗ " + msg.Err.Error())
		}
		m.viewport.SetContent(m.content)
		m.viewport.GotoTop()
		return m, nil

	case RefreshBrowseMsg:
		if m.refreshFunc != nil {
			go m.refreshFunc()
		}
		return m, nil
	}

	return m, nil
}

func (m browseModel) selectedNote() *NoteInfo {
	if m.data == nil || len(m.data.Notes) == 0 {
		return nil
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.data.Notes) {
		return nil
	}
	return &m.data.Notes[idx]
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Sticky Notes"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}

	if !m.ready || m.data == nil {
		return b.String()
	}

	switch {
	case m.showingPrompt:
		b.WriteString(styles.HighlightStyle.Render("Rewrite this note in canonical form?"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("\n  Note: %s\n", styles.ValueStyle.Render(m.selected.Title)))
		b.WriteString(fmt.Sprintf("  %s\n\n", styles.WarningStyle.Render("The stored markdown will be replaced")))
		b.WriteString(styles.HelpStyle.Render("y rewrite • n/esc cancel"))
		b.WriteString("\n")

	case m.showing != "":
		label := "Preview"
		if m.showing == "diff" {
			label = "Format Diff"
		}
		b.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%s: %s", label, m.selected.Title)))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		if m.showing == "diff" && !m.selected.Canonical {
			b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • f format • esc/q back"))
		} else {
			b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc/q back"))
		}
		b.WriteString("\n")

	default:
		b.WriteString(styles.LabelStyle.Render(fmt.Sprintf("Notes: %d", len(m.data.Notes))))
		b.WriteString("\n\n")
		b.WriteString(styles.TableStyle.Render(m.table.View()))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter preview • d format diff • r refresh • q quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m browseModel) loadPreview(id string) tea.Cmd {
	width := m.viewport.Width - 4
	return func() tea.Msg {
		if m.previewFunc == nil {
			return PreviewMsg{}
		}
		content, err := m.previewFunc(id, width)
		return PreviewMsg{Content: content, Err: err}
	}
}

func (m browseModel) loadDiff(id string) tea.Cmd {
	return func() tea.Msg {
		if m.diffFunc == nil {
			return PreviewMsg{}
		}
		content, err := m.diffFunc(id)
		if err == nil && content == "" {
			content = styles.SuccessStyle.Render("✓ Note is already in canonical form")
		}
		return PreviewMsg{Content: content, Err: err}
	}
}

// performFormat rewrites the selected note, then asks for fresh data
func (m browseModel) performFormat() tea.Cmd {
	return func() tea.Msg {
		if m.formatFunc == nil || m.selected == nil {
			return RefreshBrowseMsg{}
		}
		if err := m.formatFunc(m.selected.ID); err != nil {
			return PreviewMsg{Err: err}
		}
		return RefreshBrowseMsg{}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
