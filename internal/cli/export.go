package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"LocalBoard/internal/export"
)

func (c *CLI) exportCommand() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "export <file.png|file.pdf>",
		Short: "Render the saved board to a PNG or PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := export.FormatOf(path); err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			b, kv, err := c.openBoard(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer kv.Close()

			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			if err := export.WriteFile(path, b.Surface().Snapshot(), title); err != nil {
				return err
			}
			prog.done("Exported board")
			printSuccess(cmd.OutOrStdout(), "Exported %d actions", len(b.History().Undo))
			printFile(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "PDF page title (default: file name)")
	return cmd
}
