package commands

import (
	"context"
	"fmt"

	"github.com/WhalePrompt/stiky-note-md/internal/server"
	"github.com/WhalePrompt/stiky-note-md/internal/watch"
)

// Serve runs the browser preview server on the configured address until
// ctx is done. Pages reload when their note changes on disk.
func Serve(ctx context.Context, env *Env, addr string) error {
	if addr == "" {
		addr = env.Config.PreviewAddr
	}

	srv := server.New(env.Store, env.State, env.Config.Theme(), env.Log)

	w, err := watch.New(env.Store.Dir, watch.WithLogger(env.Log), watch.WithState(env.State))
	if err != nil {
		return fmt.Errorf("failed to watch notes: %w", err)
	}
	defer w.Close()

	go func() {
		if err := w.Run(ctx); err != nil {
			env.Log.Warn("watcher stopped", "error", err)
		}
	}()
	go srv.Watch(ctx, w.Events())

	env.Log.Info("serving notes", "dir", env.Store.Dir, "url", "http://"+addr+"/notes")
	return srv.Run(ctx, addr)
}
