package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/WhalePrompt/stiky-note-md/internal/config"
	"github.com/WhalePrompt/stiky-note-md/internal/diff"
	"github.com/WhalePrompt/stiky-note-md/internal/preview"
	"github.com/WhalePrompt/stiky-note-md/internal/tui"
	"github.com/WhalePrompt/stiky-note-md/internal/watch"
)

// Open runs the note board: every stored note gets a pane, blank notes
// are pruned and external edits are picked up while it runs
func Open(env *Env) error {
	b := env.Board()
	sessions := b.Startup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events <-chan watch.Event
	w, err := watch.New(env.Store.Dir, watch.WithLogger(env.Log), watch.WithState(env.State))
	if err != nil {
		env.Log.Warn("watching notes disabled", "error", err)
	} else {
		defer w.Close()
		events = w.Events()
		go func() {
			if err := w.Run(ctx); err != nil {
				env.Log.Warn("watcher stopped", "error", err)
			}
		}()
	}

	term := preview.NewTerminal(env.Config.GlamourStyle, env.Log)
	m := tui.InitBoardModel(b, sessions, term, events)
	p := tea.NewProgram(m, tea.WithAltScreen())

	_, runErr := p.Run()

	// A crashed program still saves what it can
	b.CloseAll()
	b.SaveState(env.StatePath)

	if runErr != nil {
		return fmt.Errorf("board failed: %w", runErr)
	}
	return nil
}

// Browse lists every note with a rendered preview and format diff
func Browse(env *Env) error {
	var p *tea.Program

	sendBrowseData := func() {
		data, err := tui.LoadBrowseData(env.Store, env.State, env.Config.Theme())
		p.Send(tui.BrowseMsg{Data: data, Err: err})
	}

	term := preview.NewTerminal(env.Config.GlamourStyle, env.Log)
	previewFunc := func(id string, width int) (string, error) {
		content, err := env.Store.ReadContent(id)
		if err != nil {
			return "", err
		}
		return term.Render(content, width), nil
	}
	diffFunc := func(id string) (string, error) {
		return diff.Normalization(env.Store, id, diff.FormatTerminal)
	}
	formatFunc := func(id string) error {
		_, err := formatNote(env, id)
		return err
	}

	m := tui.InitBrowseModel(previewFunc, diffFunc, formatFunc, sendBrowseData)
	p = tea.NewProgram(m, tea.WithAltScreen())

	go sendBrowseData()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

// Status shows where notes live and which of them need attention
func Status(env *Env) error {
	var p *tea.Program

	sendStatusData := func() {
		data, err := tui.LoadStatusData(env.Store, env.State)
		if data != nil {
			data.ConfigPath = config.ConfigPath()
			data.StatePath = env.StatePath
			data.LogFile = env.Config.LogFile
			data.PreviewAddr = env.Config.PreviewAddr
			data.LogLines = RecentLogLines(env.Config.LogFile, 8)
		}
		p.Send(tui.StatusMsg{Data: data, Err: err})
	}

	fixFunc := func(id, kind string) error {
		switch kind {
		case tui.IssueBlank:
			return pruneNote(env, id)
		case tui.IssueNonCanonical:
			_, err := formatNote(env, id)
			return err
		default:
			return fmt.Errorf("unknown issue %q", kind)
		}
	}

	m := tui.InitStatusModel(fixFunc, sendStatusData)
	p = tea.NewProgram(m)

	go sendStatusData()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	return nil
}
