// Package cli implements the localboard command-line interface.
//
// # Commands
//
//   - serve: run a relay hub and advertise it on the local network
//   - draw: open the desktop board, joining a hub when one is given or found
//   - export: render the saved board to PNG or PDF
//   - history: inspect or reset the saved undo history
//   - config: print the effective configuration
//
// All commands accept --verbose (-v) for debug logging and --config to
// point at a TOML file.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"LocalBoard/internal/board"
	"LocalBoard/internal/config"
	"LocalBoard/internal/store"
)

const appName = "localboard"

var version = "dev"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Config: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "LocalBoard is a collaborative drawing board for the local network",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "path to the TOML config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.configCommand())
	return root
}

// openBoard opens the configured store and restores the saved board from
// it. The caller closes the returned store.
func (c *CLI) openBoard(ctx context.Context, name string) (*board.Board, store.Store, error) {
	kv, err := store.Open(c.Config.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", c.Config.Storage.Backend, err)
	}
	b, err := board.New(ctx, board.Options{
		Width:    c.Config.Canvas.Width,
		Height:   c.Config.Canvas.Height,
		UserName: name,
		Store:    kv,
		Logger:   c.Logger,
	})
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return b, kv, nil
}

func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Config.Encode(cmd.OutOrStdout())
		},
	}
}
