package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/quire/internal/build"
	"github.com/Bitlatte/quire/internal/preview"
	"github.com/Bitlatte/quire/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the site locally and rebuilds on changes",
		Long: `The serve command performs an initial build of your site, then starts a local
web server for the output directory. It watches the content, layouts, static
and data directories and rebuilds the site when they change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := a.cfg
			log := a.log.Module("serve")
			builder := build.New(cfg, a.log)

			if _, err := builder.Build(ctx); err != nil {
				return fmt.Errorf("initial build failed: %w", err)
			}

			watcher, err := watch.New([]string{cfg.ContentDir, cfg.LayoutsDir, cfg.StaticDir, cfg.DataDir}, watch.DefaultDebounce, a.log)
			if err != nil {
				return fmt.Errorf("failed to create file watcher: %w", err)
			}
			go watcher.Run(ctx, func(ctx context.Context, changed []string) {
				log.Info("rebuilding site", "changes", len(changed))
				if _, err := builder.Build(ctx); err != nil {
					log.Error("rebuild failed", "error", err)
				}
			})

			addr := net.JoinHostPort(host, strconv.Itoa(port))
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s (Ctrl+C to stop)\n", cfg.OutputDir, preview.DisplayURL(addr))
			return preview.ListenAndServe(ctx, addr, preview.NewServer(cfg.OutputDir, a.log), a.log)
		},
	}

	addSiteFlags(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "localhost", "interface to bind")
	serveCmd.Flags().IntVarP(&port, "port", "p", 1313, "port to listen on")
	return serveCmd
}
