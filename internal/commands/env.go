package commands

import (
	"io"
	"os"

	"github.com/WhalePrompt/stiky-note-md/internal/board"
	"github.com/WhalePrompt/stiky-note-md/internal/config"
	"github.com/WhalePrompt/stiky-note-md/internal/logger"
	"github.com/WhalePrompt/stiky-note-md/internal/state"
	"github.com/WhalePrompt/stiky-note-md/internal/store"
)

// Env holds what every command needs
type Env struct {
	Config    *config.Config
	Store     *store.Store
	State     *state.State
	StatePath string
	Log       *logger.Logger
	In        io.Reader
	Out       io.Writer

	closeLog func()
}

// Setup loads the configuration and board state. Interactive commands
// pass fileLog so log output goes to the configured log file instead of
// the terminal they draw on.
func Setup(fileLog bool) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	log := logger.NewWithLevel(os.Stderr, level)
	closeLog := func() {}

	if fileLog {
		log = logger.Discard()
		if cfg.LogFile != "" {
			l, cleanup, err := logger.NewFileLogger(cfg.LogFile, level)
			if err == nil {
				log, closeLog = l, cleanup
			}
		}
	}

	log.ConfigLoaded(config.ConfigPath(), cfg.NotesDir)

	env := NewEnv(cfg, config.StateFilePath(), log)
	env.closeLog = closeLog
	return env, nil
}

// NewEnv builds an Env over cfg. A state file that cannot be read is
// logged and replaced by an empty state.
func NewEnv(cfg *config.Config, statePath string, log *logger.Logger) *Env {
	if log == nil {
		log = logger.Discard()
	}

	st, err := state.Load(statePath)
	if err != nil {
		log.StateError("load", err)
		st = state.NewState()
	}

	return &Env{
		Config:    cfg,
		Store:     store.New(cfg.NotesDir),
		State:     st,
		StatePath: statePath,
		Log:       log,
		In:        os.Stdin,
		Out:       os.Stdout,
		closeLog:  func() {},
	}
}

// Board opens a board over the environment's store and state
func (e *Env) Board() *board.Board {
	return board.New(e.Store,
		board.WithLogger(e.Log),
		board.WithState(e.State),
		board.WithDefaultTheme(e.Config.Theme()),
	)
}

// Close saves the board state and releases the log file
func (e *Env) Close() {
	if e.StatePath != "" {
		if err := e.State.Save(e.StatePath); err != nil {
			e.Log.StateError("save", err)
		}
	}
	e.closeLog()
}
