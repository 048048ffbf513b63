package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WhalePrompt/stiky-note-md/internal/commands"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live HTML previews of the notes",
	Long: `Serve starts an HTTP server with a preview page per note at /notes/{id}.
Open pages reload when the note changes on disk.`,
	Args: cobra.NoArgs,
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return commands.Serve(ctx, env, serveAddr)
	}),
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
