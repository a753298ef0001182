package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nestboard/pkg/buildinfo"
	"github.com/matzehuels/nestboard/pkg/cache"
	"github.com/matzehuels/nestboard/pkg/config"
	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/observability"
	"github.com/matzehuels/nestboard/pkg/session"
	"github.com/matzehuels/nestboard/pkg/store"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "nestboard"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	// openStore is replaced in tests.
	openStore func(ctx context.Context, cfg config.Store) (store.Store, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		openStore: store.Open,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nestboard is an infinite canvas of nested boards",
		Long:         `Nestboard keeps notes and folders as cards on a zoomable canvas. Every folder card opens into its own canvas, as deep as you like.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.SetAll(observability.NewLogHooks(c.Logger))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/nestboard/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.lsCommand())
	root.AddCommand(c.rmCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

// loadConfig reads the --config file, or the default one when the flag is
// empty. A missing default file yields the built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", path, "backend", cfg.Store.Backend)
	return cfg, nil
}

// setup loads the config and opens the configured backend.
func (c *CLI) setup(ctx context.Context) (config.Config, store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	st, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, st, nil
}

// loadBoard reads a board and rebuilds its tree.
func loadBoard(ctx context.Context, st store.Store, cfg config.Config, name string) (*workspace.Tree, string, error) {
	snap, err := st.Load(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return snap.Tree(workspace.WithDefaultSize(cfg.CardSize()))
}

// saveBoard flushes the live view and writes the session's tree.
func saveBoard(ctx context.Context, st store.Store, name string, sess *session.Session) error {
	sess.Flush()
	snap := pkgio.FromTree(sess.Tree(), sess.ActiveID())
	snap.Name = name
	return st.Save(ctx, name, snap)
}

// newSession starts a session on tree configured from cfg, with active
// reopened when it still exists.
func newSession(cfg config.Config, tree *workspace.Tree, active string, logger *log.Logger) *session.Session {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithGestureConfig(cfg.GestureConfig()),
		session.WithSpawnOffset(cfg.SpawnOffset()),
	}
	if p, err := cfg.Policy(); err == nil {
		opts = append(opts, session.WithPolicy(p))
	}
	sess := session.New(tree, opts...)
	if active != "" && active != workspace.RootID {
		if err := sess.Open(active); err != nil {
			logger.Warn("cannot reopen last layer", "node", active, "err", err)
		}
	}
	return sess
}

// newCache returns the render cache, or a null cache when disabled or
// when the cache directory is unavailable.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns the cache directory (~/.cache/nestboard/ on Linux).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}
