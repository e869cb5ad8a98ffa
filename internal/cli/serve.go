package cli

import (
	"github.com/spf13/cobra"

	"github.com/blockprint/blockprint/internal/server"
	"github.com/blockprint/blockprint/pkg/cache"
	"github.com/blockprint/blockprint/pkg/config"
	"github.com/blockprint/blockprint/pkg/store"
)

// serveCommand creates the HTTP API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		storeKind string
		origins   []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the preview HTTP API",
		Long: `Serve starts the HTTP API: stateless previews, a blueprint store and live
websocket previews that redraw when the client resizes.

The store backend is memory, file, redis or mongo, set in the [server]
section of the config file or with --store. Deployments sharing a redis or
mongo backend set server.key_prefix to keep their blueprints apart.`,
		Example: `  blockprint serve
  blockprint serve --addr :9000 --store redis --cors-origin https://example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("store") {
				cfg.Server.Store = storeKind
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.Server.CORSOrigins = origins
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			backing, err := cfg.OpenStore(ctx)
			if err != nil {
				return err
			}
			storeOpts := []store.Option{
				store.WithTTL(cfg.Server.TTL),
				store.WithLogger(c.Logger),
			}
			if prefix := cfg.Server.KeyPrefix; prefix != "" {
				storeOpts = append(storeOpts, store.WithKeyer(cache.NewScopedKeyer(nil, prefix)))
			}
			st := store.New(backing, storeOpts...)
			defer st.Close()

			srv := server.New(st,
				server.WithLogger(c.Logger),
				server.WithCORSOrigins(cfg.Server.CORSOrigins...),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout))

			c.Logger.Info("starting server", "addr", cfg.Server.Addr, "store", cfg.Server.Store)
			printInfo("Listening on %s", StyleValue.Render(cfg.Server.Addr))
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}

	defaults := config.Default().Server
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr, "listen address")
	cmd.Flags().StringVar(&storeKind, "store", defaults.Store, "blueprint store: memory, file, redis, mongo")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", defaults.CORSOrigins, "allowed browser origins (\"*\" for any)")
	return cmd
}
