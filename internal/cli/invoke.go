package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/actiongroup"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"
)

// paramsFlag collects repeated name=value flags in order.
type paramsFlag []actiongroup.Parameter

var _ pflag.Value = (*paramsFlag)(nil)

func (p *paramsFlag) String() string {
	parts := make([]string, 0, len(*p))
	for _, param := range *p {
		parts = append(parts, param.Name+"="+param.Value)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (p *paramsFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid parameter %q: expected name=value", s)
	}
	*p = append(*p, actiongroup.Parameter{Name: name, Type: "string", Value: value})
	return nil
}

func (p *paramsFlag) Type() string { return "name=value" }

func newInvokeCmd(root *rootOptions) *cobra.Command {
	var (
		params      paramsFlag
		actionGroup string
		eventFile   string
	)

	cmd := &cobra.Command{
		Use:   "invoke (access|infra) [function]",
		Short: "Run one action group invocation locally and print the response envelope",
		Example: `  opsctl invoke access validate_user_access --param user_id=bob --param resource=hr-payroll-db
  opsctl invoke infra list_databases
  opsctl invoke infra --event-file event.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := buildEvent(args, params, actionGroup, eventFile)
			if err != nil {
				return err
			}

			rt, err := root.start(cmd, "invoke")
			if err != nil {
				return err
			}
			defer rt.Close()

			var h actiongroup.Handler
			switch args[0] {
			case "access":
				h = rt.AccessTools()
			case "infra":
				h = rt.InfraTools()
			default:
				return fmt.Errorf("unknown dispatcher %q: use access or infra", args[0])
			}

			resp := actiongroup.Dispatch(logr.NewContext(cmd.Context(), rt.Logger), h, event)
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().VarP(&params, "param", "p", "Function parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&actionGroup, "action-group", "", "Action group name echoed in the response (defaults per dispatcher)")
	cmd.Flags().StringVar(&eventFile, "event-file", "", "Read a complete invocation event from a JSON or YAML file")

	return cmd
}

// buildEvent assembles the invocation from an event file and/or arguments.
// Arguments take precedence over the file.
func buildEvent(args []string, params []actiongroup.Parameter, actionGroup, eventFile string) (actiongroup.Event, error) {
	var event actiongroup.Event
	if eventFile != "" {
		data, err := os.ReadFile(eventFile)
		if err != nil {
			return event, fmt.Errorf("failed to read event file: %w", err)
		}
		if err := yaml.Unmarshal(data, &event); err != nil {
			return event, fmt.Errorf("failed to parse event file %s: %w", eventFile, err)
		}
	}

	if len(args) > 1 {
		event.Function = args[1]
	}
	if event.Function == "" {
		return event, fmt.Errorf("function name is required")
	}

	switch {
	case actionGroup != "":
		event.ActionGroup = actionGroup
	case event.ActionGroup != "":
	case args[0] == "access":
		event.ActionGroup = AccessActionGroup
	case args[0] == "infra":
		event.ActionGroup = InfraActionGroup
	}

	event.Parameters = append(event.Parameters, params...)
	if event.MessageVersion == "" {
		event.MessageVersion = actiongroup.MessageVersion
	}
	return event, nil
}
