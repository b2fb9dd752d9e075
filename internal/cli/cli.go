package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/buildinfo"
	"github.com/matzehuels/roadmap/pkg/config"
	"github.com/matzehuels/roadmap/pkg/persist"
	"github.com/matzehuels/roadmap/pkg/storage"
	"github.com/matzehuels/roadmap/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

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

	// ConfigPath is the settings file. Empty means built-in defaults.
	ConfigPath string

	// stdout receives command output and stderr progress; tests replace them.
	stdout io.Writer
	stderr io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		ConfigPath: config.DefaultPath(),
		stdout:     os.Stdout,
		stderr:     w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "roadmap",
		Short:        "Roadmap edits and lays out knowledge roadmaps",
		Long:         `Roadmap manages a persisted graph of learning concepts linked by prerequisites: collapse subtrees, track progress, auto-layout and export the visible roadmap.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", c.ConfigPath, "settings file (.toml, .yaml or .yml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Graph inspection and editing
	root.AddCommand(c.showCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.addChildCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.expandCommand())
	root.AddCommand(c.collapseCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.duplicateCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())

	// Whole-roadmap operations
	root.AddCommand(c.directionCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.fitCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())

	// Front-ends and maintenance
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.completionCommand())

	c.registerCompletions(root)
	return root
}

// =============================================================================
// Session Factory
// =============================================================================

// session is an opened roadmap: the settings, the storage backend and the
// store loaded from it.
type session struct {
	cfg     *config.Config
	backend storage.Backend
	adapter *persist.Adapter
	store   *store.Store
}

// Close releases the storage backend.
func (s *session) Close() error {
	return s.backend.Close()
}

// loadConfig reads the settings file named by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads the settings, connects the storage backend and builds a store
// from the persisted roadmap (or the seed when nothing is stored).
func (c *CLI) open(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.openWith(ctx, cfg)
}

func (c *CLI) openWith(ctx context.Context, cfg *config.Config) (*session, error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}

	adapter := persist.NewAdapter(backend, cfg.Storage.Key, c.Logger)
	adapter.Timeout = cfg.Storage.TimeoutDuration()

	st := store.New(ctx, store.Options{
		Persister: adapter,
		Logger:    c.Logger,
	})
	c.Logger.Debug("roadmap opened", "driver", backend.Driver(), "key", cfg.Storage.Key)

	return &session{cfg: cfg, backend: backend, adapter: adapter, store: st}, nil
}

// withSession opens a session, runs fn and closes the backend.
func (c *CLI) withSession(ctx context.Context, fn func(*session) error) error {
	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.Logger.Warn("close storage", "error", err)
		}
	}()
	return fn(s)
}

// applied runs fn and reports whether the store announced a mutation.
// Store operations on unknown ids are silent no-ops; commands use this to
// tell the user nothing changed.
func applied(st *store.Store, fn func()) bool {
	changed := false
	unsubscribe := st.Subscribe(func(string) { changed = true })
	defer unsubscribe()
	fn()
	return changed
}
