package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WhalePrompt/stiky-note-md/internal/commands"
	"github.com/WhalePrompt/stiky-note-md/internal/styles"
)

var (
	exportOut       string
	importOverwrite bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every note to a YAML bundle",
	Args:  cobra.NoArgs,
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		n, err := commands.Export(env, exportOut)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), styles.SuccessStyle.Render(fmt.Sprintf("✓ Exported %d note(s)", n)))
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import notes from a YAML bundle (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(false, func(env *commands.Env, cmd *cobra.Command, args []string) error {
		res, err := commands.Import(env, args[0], importOverwrite)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, styles.SuccessStyle.Render(fmt.Sprintf("✓ Imported %d note(s)", len(res.Imported))))
		if len(res.Skipped) > 0 {
			fmt.Fprintln(env.Out, styles.DimStyle.Render(fmt.Sprintf("  Skipped %d: %v", len(res.Skipped), res.Skipped)))
		}
		return nil
	}),
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "-", "Output file (- for stdout)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace notes that already exist")
	rootCmd.AddCommand(exportCmd, importCmd)
}
