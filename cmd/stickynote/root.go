package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/WhalePrompt/stiky-note-md/internal/commands"
	"github.com/WhalePrompt/stiky-note-md/internal/config"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
)

var verbose bool

// rootCmd opens the note board when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "stickynote",
	Short: "Sticky notes for the terminal, stored as Markdown",
	Long: fmt.Sprintf(`stickynote keeps each note in its own Markdown file next to a .color and
a .position file. Without a subcommand it opens the note board.

Configuration:
  Config file: %s
  State file:  %s`, config.ConfigPath(), config.StateFilePath()),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          withEnv(true, runOpen),
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the note board",
	Args:  cobra.NoArgs,
	RunE:  withEnv(true, runOpen),
}

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"files"},
	Short:   "Browse notes with preview and format diff",
	Args:    cobra.NoArgs,
	RunE: withEnv(true, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		return commands.Browse(env)
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where notes live and which need attention",
	Args:  cobra.NoArgs,
	RunE: withEnv(true, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		return commands.Status(env)
	}),
}

func runOpen(env *commands.Env, cmd *cobra.Command, args []string) error {
	return commands.Open(env)
}

// withEnv loads config and state around a command and saves the state
// once it returns
func withEnv(fileLog bool, run func(*commands.Env, *cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := commands.Setup(fileLog)
		if err != nil {
			return err
		}
		defer env.Close()

		if verbose {
			env.Log.SetLevel(log.DebugLevel)
		}
		env.In = cmd.InOrStdin()
		env.Out = cmd.OutOrStdout()
		return run(env, cmd, args)
	}
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(openCmd, browseCmd, statusCmd)
}
