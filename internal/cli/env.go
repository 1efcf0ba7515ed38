package cli

import (
	"fmt"

	"github.com/kagent-dev/opsbridge/internal/env"
	"github.com/spf13/cobra"
)

// newEnvCmd returns a cobra command that generates environment variable documentation.
func newEnvCmd() *cobra.Command {
	var format, component string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "List all opsbridge environment variables",
		Long:  "Generate documentation for all opsbridge environment variables in markdown or JSON format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "markdown", "md":
				fmt.Fprint(cmd.OutOrStdout(), env.ExportMarkdown(component))
			case "json":
				fmt.Fprint(cmd.OutOrStdout(), env.ExportJSON(component))
			default:
				return fmt.Errorf("unknown format %q: use markdown or json", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, json")
	cmd.Flags().StringVar(&component, "component", "all", "Filter by component: relay, dispatchers, server, runtime, all")

	return cmd
}
