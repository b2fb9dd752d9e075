package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/config"
	"github.com/matzehuels/roadmap/pkg/persist"
	"github.com/matzehuels/roadmap/pkg/storage"
)

// storageCommand creates the storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect or clear the stored roadmap",
	}

	cmd.AddCommand(c.storagePathCommand())
	cmd.AddCommand(c.storageInfoCommand())
	cmd.AddCommand(c.storageClearCommand())

	return cmd
}

// withBackend opens the configured backend without loading a store.
func (c *CLI) withBackend(ctx context.Context, fn func(*config.Config, storage.Backend, *persist.Adapter) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer backend.Close()

	adapter := persist.NewAdapter(backend, cfg.Storage.Key, c.Logger)
	adapter.Timeout = cfg.Storage.TimeoutDuration()
	return fn(cfg, backend, adapter)
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the roadmap is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd.Context(), func(cfg *config.Config, b storage.Backend, _ *persist.Adapter) error {
				if fb, ok := b.(*storage.FileBackend); ok {
					fmt.Fprintln(c.stdout, fb.Path(cfg.Storage.Key))
					return nil
				}
				fmt.Fprintf(c.stdout, "%s key %q\n", b.Driver(), cfg.Storage.Key)
				return nil
			})
		},
	}
}

// storageInfoCommand creates the "storage info" subcommand.
func (c *CLI) storageInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the stored roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd.Context(), func(cfg *config.Config, b storage.Backend, a *persist.Adapter) error {
				printKeyValue(c.stdout, "driver", b.Driver())
				printKeyValue(c.stdout, "key", cfg.Storage.Key)
				if c.ConfigPath != "" {
					printKeyValue(c.stdout, "settings", c.ConfigPath)
				}
				st, ok := a.Load(cmd.Context())
				if !ok {
					printInfo(c.stdout, "Nothing stored; the built-in roadmap is used")
					return nil
				}
				printKeyValue(c.stdout, "direction", string(st.LayoutDirection))
				printStats(c.stdout, len(st.Nodes), len(st.Edges), st.HiddenNodeIDs.Len())
				return nil
			})
		},
	}
}

// storageClearCommand creates the "storage clear" subcommand.
func (c *CLI) storageClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored roadmap",
		Long:  `Delete the stored roadmap. The next command starts from the built-in roadmap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withBackend(cmd.Context(), func(cfg *config.Config, b storage.Backend, a *persist.Adapter) error {
				if err := a.Clear(cmd.Context()); err != nil {
					return err
				}
				printSuccess(c.stdout, "Cleared stored roadmap")
				printDetail(c.stdout, "%s key %q", b.Driver(), cfg.Storage.Key)
				return nil
			})
		},
	}
}
