package cli

import (
	"context"
	"errors"
	stdnet "net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"LocalBoard/internal/config"
	"LocalBoard/internal/net"
)

const shutdownTimeout = 5 * time.Second

type serveOpts struct {
	addr      string
	advertise bool
	instance  string
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a hub that relays drawing between boards",
		Long: `Run a hub that relays drawing between boards.

The hub listens for websocket connections on /ws, announces itself over
mDNS so "draw --discover" can find it, and prints a share link.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.addr
			}
			if cmd.Flags().Changed("advertise") {
				cfg.Advertise = opts.advertise
			}
			if cmd.Flags().Changed("instance") {
				cfg.Instance = opts.instance
			}
			return c.serve(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&opts.advertise, "advertise", true, "announce the hub over mDNS")
	cmd.Flags().StringVar(&opts.instance, "instance", "", "mDNS instance name (default: host name)")
	return cmd
}

func (c *CLI) serve(cmd *cobra.Command, cfg config.Server) error {
	parent := cmd.Context()
	hub := net.NewHub(net.HubOptions{
		Logger:       c.Logger,
		CommandRate:  cfg.CommandRate,
		CommandBurst: cfg.CommandBurst,
	})
	ln, err := stdnet.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	port := ln.Addr().(*stdnet.TCPAddr).Port
	srv := &http.Server{Handler: hub.Router(), ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(parent)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Advertise {
		g.Go(func() error {
			server, err := net.Advertise(port, cfg.Instance)
			if err != nil {
				c.Logger.Warn("not advertising over mDNS", "err", err)
				return nil
			}
			c.Logger.Debug("advertising over mDNS", "port", port)
			<-ctx.Done()
			return server.Shutdown()
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	out := cmd.OutOrStdout()
	printSuccess(out, "Hub listening on %s", ln.Addr())
	printLink(out, "Share link", net.ShareLink(net.OutgoingIP(), port))
	printDetail(out, "Press Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
