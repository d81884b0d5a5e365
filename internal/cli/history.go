package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"LocalBoard/internal/state"
)

func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset the saved undo history",
	}
	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyResetCommand())
	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the saved actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, kv, err := c.openBoard(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer kv.Close()

			stacks := b.History()
			out := cmd.OutOrStdout()
			printTitle(out, "History")
			printKeyValue(out, "Backend", c.Config.Storage.Backend)
			printKeyValue(out, "Undo", fmt.Sprint(len(stacks.Undo)))
			printKeyValue(out, "Redo", fmt.Sprint(len(stacks.Redo)))
			for i, a := range stacks.Undo {
				printDetail(out, "%3d %s", i+1, describe(a))
			}
			if len(stacks.Redo) > 0 {
				printInfo(out, "Undone")
				for i, a := range stacks.Redo {
					printDetail(out, "%3d %s", i+1, describe(a))
				}
			}
			return nil
		},
	}
}

func describe(a state.Action) string {
	origin := "local"
	if a.IsFromRemotePeer {
		origin = "remote"
	}
	noun := "commands"
	if len(a.Commands) == 1 {
		noun = "command"
	}
	return fmt.Sprintf("%-9s %d %s, %s", a.ToolKind, len(a.Commands), noun, origin)
}

func (c *CLI) historyResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget every saved action and clear the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, kv, err := c.openBoard(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer kv.Close()

			n := len(b.History().Undo)
			b.Reset()
			printSuccess(cmd.OutOrStdout(), "Removed %d actions", n)
			return nil
		},
	}
}
