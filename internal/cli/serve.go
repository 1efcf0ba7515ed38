package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/env"
	"github.com/kagent-dev/opsbridge/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	cfg := server.Config{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Slack conversation relay as an HTTP server",
		Long:  "Serve Slack Events API requests on " + server.EventsPath + " together with /health, /healthz and /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.start(cmd, "relay")
			if err != nil {
				return err
			}
			defer rt.Close()

			r, err := rt.Relay()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logr.NewContext(ctx, rt.Logger)

			cfg.Logger = rt.Logger
			return server.New(cfg, r).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Host, "host", "", "Host to bind to")
	cmd.Flags().StringVar(&cfg.Port, "port", env.Port.Get(), "Port to listen on")
	cmd.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", env.ShutdownTimeout.Get(), "Graceful shutdown timeout")

	return cmd
}
