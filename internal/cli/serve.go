package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/internal/metrics"
	"github.com/matzehuels/roadmap/pkg/api"
	"github.com/matzehuels/roadmap/pkg/config"
	"github.com/matzehuels/roadmap/pkg/observability"
)

const shutdownTimeout = 15 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the roadmap over HTTP",
		Long: `Serve the roadmap API and Prometheus metrics. Layout and viewport
settings are reloaded when the settings file changes; storage settings need
a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings, :8080)")
	return cmd
}

func (c *CLI) serve(ctx context.Context, addr string) error {
	logger := loggerFromContext(ctx)

	loader, err := config.NewLoader(c.ConfigPath, logger)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.New(reg).Register()
	defer observability.Reset()

	s, err := c.openWith(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	unsubscribe := s.store.Subscribe(func(op string) {
		logger.Debug("roadmap changed", "op", op)
	})
	defer unsubscribe()

	loader.OnChange(func(next *config.Config) {
		if next.Storage != cfg.Storage {
			logger.Warn("storage settings changed; restart to apply")
		}
		logger.Info("settings reloaded", "direction", next.Layout.Direction,
			"width", next.Viewport.Width, "height", next.Viewport.Height)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		logger.Warn("settings watcher unavailable (hot-reload disabled)", "error", err)
	} else {
		defer stopWatch()
	}

	srv := &http.Server{
		Addr: addr,
		Handler: api.New(s.store, api.Options{
			Settings: loader.Config,
			Gatherer: reg,
			Logger:   logger,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "storage", s.backend.Driver())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	logger.Info("goodbye")
	return nil
}
