package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spboyer/benchboard/internal/store"
	"github.com/spboyer/benchboard/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var (
		host    string
		port    int
		watch   bool
		open    bool
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard web site and JSON API",
		Long: `Serve the leaderboard web site and JSON API.

Pages:
  /                   Home with catalog statistics and featured tasks
  /tasks              Task list, filterable by family, tag and document type
  /task/{id}          Single-task leaderboard
  /aggregate          Cross-task leaderboard for a selection

API:
  /api/tasks, /api/tasks/{id}/leaderboard, /api/aggregate,
  /api/facets, /api/stats, /api/health

Prometheus metrics are exposed at /metrics. With --watch the data
directories are reloaded when files change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, fs, err := g.openStore()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("host") {
				host = cfg.Server.Host
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}
			if !cmd.Flags().Changed("watch") {
				watch = cfg.WatchEnabled()
			}
			if !cmd.Flags().Changed("allowed-origin") {
				origins = cfg.Server.AllowedOrigins
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Load up front so bad data fails before the port is bound.
			if err := fs.Reload(ctx); err != nil {
				return fmt.Errorf("loading data: %w", err)
			}

			logger := slog.Default()
			if watch {
				if err := startWatcher(ctx, fs, logger); err != nil {
					return err
				}
			}

			srv, err := webserver.New(webserver.Config{
				Host:           host,
				Port:           port,
				Store:          fs,
				AllowedOrigins: origins,
				OpenBrowser:    open,
				Logger:         logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to bind (default from config, 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 5000)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload data when files change")
	cmd.Flags().BoolVar(&open, "open", false, "Open the site in the default browser")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", nil, "Extra CORS origin allowed to call the API (repeatable)")

	return cmd
}

func startWatcher(ctx context.Context, fs *store.FileStore, logger *slog.Logger) error {
	w, err := store.NewWatcher(fs, store.DefaultDebounce)
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("file watcher stopped", "error", err)
		}
	}()
	return nil
}
