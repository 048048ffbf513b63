package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/WhalePrompt/stiky-note-md/internal/convert"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
)

// StatusData holds all the information for the status display
type StatusData struct {
	NotesDir     string
	ConfigPath   string
	StatePath    string
	LogFile      string
	PreviewAddr  string
	NoteCount    int
	PinnedCount  int
	Blank        []string // pruned at next startup
	NonCanonical []string // changed by the next save
	Unreadable   []string
	LogLines     []string
}

// Issue kinds shown in the status table
const (
	IssueBlank        = "blank"
	IssueNonCanonical = "format"
)

// FixMsg is sent when the user confirms fixing a note
type FixMsg struct {
	ID   string
	Kind string
}

// LoadStatusData scans the store and classifies every note
func LoadStatusData(s *store.Store, st *state.State) (*StatusData, error) {
	ids, err := s.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	data := &StatusData{NotesDir: s.Dir, NoteCount: len(ids)}
	for _, id := range ids {
		if st.IsPinned(id) {
			data.PinnedCount++
		}

		content, err := s.ReadContent(id)
		if err != nil {
			data.Unreadable = append(data.Unreadable, id)
			continue
		}

		switch {
		case strings.TrimSpace(content) == "":
			data.Blank = append(data.Blank, id)
		case convert.Normalize(content) != content:
			data.NonCanonical = append(data.NonCanonical, id)
		}
	}
	return data, nil
}

type statusModel struct {
	spinner       spinner.Model
	data          *StatusData
	table         table.Model
	err           error
	scanning      bool
	ready         bool
	width         int
	height        int
	issues        []issueRow
	showingPrompt bool
	// Dependencies
	fixFunc     func(id, kind string) error
	refreshFunc func()
}

// issueRow tracks the note behind each table row
type issueRow struct {
	id   string
	kind string
}

// InitStatusModel creates a new status display model
func InitStatusModel(fixFunc func(string, string) error, refreshFunc func()) statusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Magenta))

	columns := []table.Column{
		{Title: "Note", Width: 40},
		{Title: "Issue", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
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

	return statusModel{
		spinner:     s,
		scanning:    true,
		table:       t,
		fixFunc:     fixFunc,
		refreshFunc: refreshFunc,
	}
}

func (m statusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.showingPrompt {
			switch msg.String() {
			case "y":
				m.showingPrompt = false
				if row, ok := m.selectedIssue(); ok {
					return m, func() tea.Msg { return FixMsg{ID: row.id, Kind: row.kind} }
				}
				return m, nil
			case "n", "esc":
				m.showingPrompt = false
				return m, nil
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
			if _, ok := m.selectedIssue(); ok {
				m.showingPrompt = true
			}
			return m, nil
		case "r":
			return m, func() tea.Msg { return RefreshStatusMsg{} }
		}

	case FixMsg:
		return m, m.performFix(msg)

	case RefreshStatusMsg:
		if m.refreshFunc != nil {
			go m.refreshFunc()
		}
		return m, nil

	case StatusMsg:
		m.scanning = false
		m.ready = true
		m.data = msg.Data
		m.err = msg.Err

		if m.data != nil {
			rows := []table.Row{}
			m.issues = []issueRow{}

			for _, id := range m.data.Blank {
				rows = append(rows, table.Row{id, "○ blank, pruned on start"})
				m.issues = append(m.issues, issueRow{id: id, kind: IssueBlank})
			}
			for _, id := range m.data.NonCanonical {
				rows = append(rows, table.Row{id, "→ not canonical"})
				m.issues = append(m.issues, issueRow{id: id, kind: IssueNonCanonical})
			}

			m.table.SetRows(rows)
			if m.table.Cursor() >= len(rows) {
				m.table.SetCursor(max(len(rows)-1, 0))
			}
		}

		return m, nil

	case spinner.TickMsg:
		if m.scanning {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m statusModel) selectedIssue() (issueRow, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.issues) {
		return issueRow{}, false
	}
	return m.issues[idx], true
}

func (m statusModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Sticky Notes Status"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}

	if m.scanning {
		b.WriteString(fmt.Sprintf("%s Scanning notes...\n", m.spinner.View()))
		return b.String()
	}

	if !m.ready || m.data == nil {
		return b.String()
	}

	value := styles.ValueStyle.Render
	label := styles.LabelStyle.Render

	// Configuration
	b.WriteString(label("Configuration"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Notes directory: %s\n", value(m.data.NotesDir)))
	if m.data.ConfigPath != "" {
		b.WriteString(fmt.Sprintf("  Config file:     %s\n", value(m.data.ConfigPath)))
	}
	if m.data.StatePath != "" {
		b.WriteString(fmt.Sprintf("  State file:      %s\n", value(m.data.StatePath)))
	}
	if m.data.LogFile != "" {
		b.WriteString(fmt.Sprintf("  Log file:        %s\n", value(m.data.LogFile)))
	}
	if m.data.PreviewAddr != "" {
		b.WriteString(fmt.Sprintf("  Preview server:  %s\n", value("http://"+m.data.PreviewAddr)))
	}
	b.WriteString("\n")

	// Notes
	b.WriteString(label("Notes"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Stored: %s\n", value(fmt.Sprintf("%d", m.data.NoteCount))))
	b.WriteString(fmt.Sprintf("  Pinned: %s\n", value(fmt.Sprintf("%d", m.data.PinnedCount))))
	if len(m.data.Unreadable) > 0 {
		b.WriteString(fmt.Sprintf("  %s\n", styles.ErrorStyle.Render(fmt.Sprintf("✗ %d unreadable note(s)", len(m.data.Unreadable)))))
	}
	b.WriteString("\n")

	totalIssues := len(m.issues)
	b.WriteString(label("Maintenance"))
	b.WriteString("\n")
	if totalIssues == 0 {
		b.WriteString(fmt.Sprintf("  %s\n", styles.SuccessStyle.Render("✓ All notes are canonical")))
	} else {
		if len(m.data.Blank) > 0 {
			b.WriteString(fmt.Sprintf("  %s\n", styles.HighlightStyle.Render(fmt.Sprintf("● %d blank note(s)", len(m.data.Blank)))))
		}
		if len(m.data.NonCanonical) > 0 {
			b.WriteString(fmt.Sprintf("  %s\n", styles.HighlightStyle.Render(fmt.Sprintf("● %d note(s) not in canonical form", len(m.data.NonCanonical)))))
		}
		b.WriteString("\n")
		b.WriteString(styles.TableStyle.Render(m.table.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.data.LogLines) > 0 {
		b.WriteString(label("Recent Log"))
		b.WriteString("\n")
		for _, line := range m.data.LogLines {
			b.WriteString("  " + styles.DimStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showingPrompt {
		if row, ok := m.selectedIssue(); ok {
			action := "Rewrite in canonical form"
			if row.kind == IssueBlank {
				action = "Delete the blank note"
			}
			b.WriteString(styles.HighlightStyle.Render(action + "?"))
			b.WriteString(fmt.Sprintf("\n  Note: %s\n\n", value(row.id)))
			b.WriteString(styles.HelpStyle.Render("y confirm • n/esc cancel"))
			b.WriteString("\n")
			return b.String()
		}
	}

	if totalIssues > 0 {
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter fix • r refresh • q/ctrl+c quit"))
	} else {
		b.WriteString(styles.HelpStyle.Render("r refresh • q/ctrl+c quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// performFix applies the chosen fix and asks for fresh data
func (m statusModel) performFix(msg FixMsg) tea.Cmd {
	return func() tea.Msg {
		if m.fixFunc == nil {
			return RefreshStatusMsg{}
		}
		if err := m.fixFunc(msg.ID, msg.Kind); err != nil {
			return StatusMsg{Data: m.data, Err: err}
		}
		return RefreshStatusMsg{}
	}
}
