package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/internal/server"
	"github.com/matzehuels/slicetopo/pkg/draft"
	"github.com/matzehuels/slicetopo/pkg/observability"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the draft store and editor over HTTP",
		Long: `Serve exposes every draft over a JSON API: nodes, connections,
preset generation, validation, rendering and Slice Manager submission.
Prometheus metrics are served on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			ds, err := draft.Open(ctx, c.cfg.DraftOptions())
			if err != nil {
				return err
			}
			defer ds.Close()

			sub, err := c.configuredSubmitter()
			if err != nil {
				return err
			}
			if sub == nil {
				c.Logger.Warn("no Slice Manager url configured, /send is disabled")
			}

			prom := observability.NewPrometheus(nil)
			prom.Install()
			defer observability.Reset()

			srv := server.New(ds, server.Options{
				Submitter: sub,
				Rules:     c.cfg.ValidateOptions(),
				Editor:    c.editorOptions(),
				Metrics:   prom,
				Logger:    c.Logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
