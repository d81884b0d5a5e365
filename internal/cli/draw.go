package cli

import (
	"github.com/spf13/cobra"

	"LocalBoard/internal/net"
	"LocalBoard/internal/ui"
)

type drawOpts struct {
	name     string
	url      string
	discover bool
}

func (c *CLI) drawCommand() *cobra.Command {
	var opts drawOpts
	cmd := &cobra.Command{
		Use:   "draw [link]",
		Short: "Open the drawing board",
		Long: `Open the drawing board.

With a share link, host:port or URL the board joins that hub. With
--discover it joins the first hub found on the local network. Otherwise it
starts offline; the drawing is saved either way.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Client
			if cmd.Flags().Changed("name") {
				cfg.Name = opts.name
			}
			if cmd.Flags().Changed("discover") {
				cfg.Discover = opts.discover
			}
			if len(args) == 1 {
				cfg.URL = args[0]
			}

			ctx := cmd.Context()
			b, kv, err := c.openBoard(ctx, cfg.Name)
			if err != nil {
				return err
			}
			defer kv.Close()

			target := cfg.URL
			if target == "" && cfg.Discover {
				services, err := net.Browse(ctx, cfg.DiscoverWait.Duration)
				if err != nil {
					c.Logger.Warn("discovery failed", "err", err)
				}
				if len(services) > 0 {
					c.Logger.Info("found board", "instance", services[0].Instance, "addr", services[0].Addr)
					target = services[0].Addr
				}
			}

			if target != "" {
				url, err := net.WebsocketURL(target)
				if err != nil {
					return err
				}
				client, err := net.Dial(ctx, url, cfg.Name, c.Logger)
				if err != nil {
					c.Logger.Warn("could not join board, drawing offline", "url", url, "err", err)
				} else {
					defer client.Close()
					b.SetSender(client)
					go func() {
						if err := client.Run(ctx, b); err != nil {
							c.Logger.Warn("connection lost", "err", err)
						}
						b.SetSender(nil)
					}()
				}
			}

			return ui.Run(ctx, b, ui.Options{Title: "LocalBoard", Link: target, Logger: c.Logger})
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "name shown to other users")
	cmd.Flags().BoolVar(&opts.discover, "discover", false, "join the first board found on the local network")
	return cmd
}
