package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/assetver/internal/log"
	"github.com/vango-dev/assetver/internal/server"
	"github.com/vango-dev/assetver/pkg/assets"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public directory with version-aware caching",
		Long: `Serve static files from the public directory.

Requests carrying the version parameter are cached as immutable. The
server also exposes ` + server.LookupPath + `?path=<p> returning the
versioned URL as JSON, and Prometheus metrics on ` + server.MetricsPath + `.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			configureLogging(cfg, cmd.ErrOrStderr())

			metrics := assets.NewMetrics(assets.WithRegistry(prometheus.DefaultRegisterer))
			v := newVersioner(cfg, assets.WithMetrics(metrics))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, v, server.WithLogger(log.WithComponent("server")))
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")

	return cmd
}
