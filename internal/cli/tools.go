package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/bootstrap"
	"github.com/kagent-dev/opsbridge/internal/env"
	"github.com/kagent-dev/opsbridge/internal/mcptools"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newToolsCmd(root *rootOptions) *cobra.Command {
	var (
		port  string
		stdio bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Serve the access and infrastructure functions as MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.start(cmd, "tools")
			if err != nil {
				return err
			}
			defer rt.Close()

			s := newToolServer(rt)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logr.NewContext(ctx, rt.Logger)

			if stdio {
				return mcpserver.NewStdioServer(s.MCPServer).Listen(ctx, os.Stdin, os.Stdout)
			}
			return serveSSE(ctx, rt.Logger, s, ":"+port)
		},
	}

	cmd.Flags().StringVar(&port, "port", env.ToolsPort.Get(), "Port for the SSE transport")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Serve over stdin/stdout instead of SSE")

	return cmd
}

func newToolServer(rt *bootstrap.Runtime) *mcptools.InstrumentedServer {
	s := mcptools.NewInstrumentedServer("opsbridge-tools", telemetry.ServiceVersion, rt.Logger)
	mcptools.Register(s, AccessActionGroup, rt.AccessTools())
	mcptools.Register(s, InfraActionGroup, rt.InfraTools())
	return s
}

func serveSSE(ctx context.Context, log logr.Logger, s *mcptools.InstrumentedServer, addr string) error {
	srv := mcpserver.NewSSEServer(s.MCPServer)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting MCP tool server", "addr", addr)
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down MCP tool server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout.Get())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
