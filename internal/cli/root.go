// Package cli implements the opsctl command tree.
package cli

import (
	"github.com/kagent-dev/opsbridge/internal/bootstrap"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	"github.com/spf13/cobra"
)

// Action group names used when the dispatchers are served outside Bedrock.
const (
	AccessActionGroup = "AccessTools"
	InfraActionGroup  = "InfraTools"
)

type rootOptions struct {
	logLevel string
	region   string
}

// NewRootCmd returns the opsctl root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "opsctl",
		Short:         "Operate the opsbridge action groups and Slack relay",
		Version:       telemetry.ServiceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error). Overrides LOG_LEVEL.")
	cmd.PersistentFlags().StringVar(&opts.region, "region", "", "AWS region. Overrides AWS_REGION.")

	cmd.AddCommand(
		newServeCmd(opts),
		newToolsCmd(opts),
		newInvokeCmd(opts),
		newEnvCmd(),
	)
	return cmd
}

func (o *rootOptions) start(cmd *cobra.Command, component string) (*bootstrap.Runtime, error) {
	return bootstrap.Start(cmd.Context(), component, bootstrap.Options{
		LogLevel: o.logLevel,
		Region:   o.region,
	})
}
