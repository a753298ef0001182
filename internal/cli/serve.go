package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nestboard/pkg/config"
	"github.com/matzehuels/nestboard/pkg/server"
	"github.com/matzehuels/nestboard/pkg/session"
)

// serveCommand creates the serve command, which exposes one board over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noSave, useCache bool

	cmd := &cobra.Command{
		Use:   "serve <name>",
		Short: "Serve a board over HTTP with live view events",
		Long: `Serve opens a board and exposes its session as a JSON API, with a
websocket at /api/events that streams view and layer changes.

The board is saved when the server stops. Edits to the config file are
picked up while running.`,
		Example: `  nestboard serve notes
  nestboard serve notes --addr :9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, !noSave, useCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the board on exit")
	cmd.Flags().BoolVar(&useCache, "cache", false, "keep rendered images in the render cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, name, addr string, save, useCache bool) error {
	logger := loggerFromContext(ctx)

	cfg, st, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	tree, active, err := loadBoard(ctx, st, cfg, name)
	if err != nil {
		return err
	}
	sess := newSession(cfg, tree, active, logger)

	if addr == "" {
		addr = cfg.Server.Addr
	}
	// Every pan yields a new image, so the cache is opt-in here.
	rc, err := newCache(!useCache)
	if err != nil {
		return err
	}
	runner := newRunner(rc, name, logger)
	defer runner.Close()

	srv := server.New(sess,
		server.WithLogger(logger),
		server.WithRenderer(runner),
		server.WithStore(st, name),
		server.WithFrame(cfg.Frame()),
	)
	defer srv.Close()

	if path := c.watchPath(); path != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := config.Watch(watchCtx, path, func(next config.Config, err error) {
				c.reloadConfig(srv, next, err)
			}); err != nil {
				logger.Warn("config watch stopped", "err", err)
			}
		}()
	}

	printSuccess("Serving %s", name)
	printKeyValue("Address", addr)
	printNextStep("Stop with", "Ctrl+C")

	serveErr := srv.ListenAndServe(ctx, addr)

	if save {
		// ctx is already cancelled on interrupt.
		if err := srv.Save(context.WithoutCancel(ctx)); err != nil {
			logger.Error("save failed", "board", name, "err", err)
			if serveErr == nil {
				serveErr = err
			}
		} else {
			printSuccess("Saved %s", name)
		}
	}
	return serveErr
}

// watchPath returns the config file to watch, or "" when there is none on
// disk.
func (c *CLI) watchPath() string {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return ""
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// reloadConfig applies the zoom policy of a reloaded config to the running
// session. Settings that only matter at startup are ignored.
func (c *CLI) reloadConfig(srv *server.Server, cfg config.Config, err error) {
	if err != nil {
		c.Logger.Warn("config reload failed", "err", err)
		return
	}
	policy, err := cfg.Policy()
	if err != nil {
		c.Logger.Warn("config reload rejected", "err", err)
		return
	}
	if err := srv.Do(func(s *session.Session) error { return s.SetPolicy(policy) }); err != nil {
		c.Logger.Warn("config reload rejected", "err", err)
		return
	}
	c.Logger.Info("config reloaded", "min_scale", policy.MinScale, "max_scale", policy.MaxScale)
}
