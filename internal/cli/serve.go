package cli

import (
	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/server"
)

// NewServeCmd creates the `serve` command, a read-only JSON API over the
// content index and the tweet cache.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only preview API",
		Long: `Serves the article index, article bodies with JSON-LD, the cached tweets,
the links page, the RSS feed and the sitemap over HTTP until interrupted.
The server never calls the Twitter API; run "tweets refresh" to update the cache.`,
		Example: `  anascode serve --addr 127.0.0.1:8080`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd)
			if addr == "" {
				addr = cfg.Server.Addr
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			index := newIndex(cmd, cfg, false)

			srv := server.New(cfg, index, store, server.WithLogger(commandLogger(cmd, "server")))
			cmd.Printf("Serving on %s (Ctrl+C to stop)\n", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}
