package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WhalePrompt/stiky-note-md/internal/commands"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
)

var (
	showHTML  bool
	showWidth int
	deleteYes bool
	fmtDiff   bool
	fmtWrite  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes with their colors",
	Args:    cobra.NoArgs,
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		return commands.List(env)
	}),
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Render a note in the terminal or as HTML",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		return commands.Show(env, args[0], showHTML, showWidth)
	}),
}

var newCmd = &cobra.Command{
	Use:   "new [text]",
	Short: "Create a note from arguments or stdin",
	Long: `New creates a note and prints its id. Without arguments the note text is
read from stdin.`,
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(env.In)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		id, err := commands.Create(env, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, id)
		return nil
	}),
}

var catCmd = &cobra.Command{
	Use:   "cat [id]",
	Short: "Print the stored Markdown of a note",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		return commands.Cat(env, args[0])
	}),
}

var writeCmd = &cobra.Command{
	Use:   "write [id]",
	Short: "Replace a note with Markdown read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(env.In)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return commands.Write(env, args[0], string(data))
	}),
}

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a note with its color and position files",
	Args:    cobra.ExactArgs(1),
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		confirm := func() bool {
			return deleteYes || commands.Confirm(env.In, env.Out, "Delete note "+args[0]+"? It cannot be undone.")
		}

		err := commands.Delete(env, args[0], confirm)
		if errors.Is(err, commands.ErrAborted) {
			fmt.Fprintln(env.Out, styles.DimStyle.Render("Nothing deleted"))
			return nil
		}
		return err
	}),
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [id...]",
	Short: "Check that notes are stored in canonical form",
	Long: `Fmt lists notes that saving would change. Use --diff to see the changes
and --write to rewrite the notes.`,
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		res, err := commands.Fmt(env, args, fmtDiff, fmtWrite)
		if err != nil {
			return err
		}

		switch {
		case res.Changed == 0:
			fmt.Fprintln(cmd.ErrOrStderr(), styles.SuccessStyle.Render(fmt.Sprintf("✓ %d note(s) canonical", res.Checked)))
		case fmtWrite:
			fmt.Fprintln(cmd.ErrOrStderr(), styles.SuccessStyle.Render(fmt.Sprintf("✓ Rewrote %d of %d note(s)", res.Rewritten, res.Checked)))
		default:
			return fmt.Errorf("%d of %d note(s) not canonical", res.Changed, res.Checked)
		}
		return nil
	}),
}

func init() {
	showCmd.Flags().BoolVar(&showHTML, "html", false, "Print a standalone HTML page")
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 80, "Word wrap width")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "Print the changes as a unified diff")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Rewrite notes in canonical form")

	rootCmd.AddCommand(listCmd, showCmd, newCmd, catCmd, writeCmd, deleteCmd, fmtCmd)
}
