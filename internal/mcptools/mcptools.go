// Package mcptools exposes action group functions as MCP tools, so agents that
// are not Bedrock agents can call the same operations.
package mcptools

import (
	"context"
	"fmt"

	"github.com/kagent-dev/opsbridge/internal/actiongroup"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Toolset is an action group handler that can describe its functions.
// *access.Tools and *infra.Tools satisfy it.
type Toolset interface {
	actiongroup.Handler
	Functions() []actiongroup.FunctionSpec
}

// ToolAdder is satisfied by *server.MCPServer and *InstrumentedServer.
type ToolAdder interface {
	AddTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// Register adds one MCP tool per function of ts. Calls are dispatched with
// actionGroup as the action group name.
func Register(s ToolAdder, actionGroup string, ts Toolset) {
	for _, fn := range ts.Functions() {
		s.AddTool(newTool(fn), toolHandler(actionGroup, fn, ts))
	}
}

func newTool(fn actiongroup.FunctionSpec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(fn.Description)}
	for _, p := range fn.Parameters {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(p.Name, propOpts...))
	}
	return mcp.NewTool(fn.Name, opts...)
}

// toolHandler turns a tool call into an action group invocation. Handler
// errors become error results; the Go error is reserved for transport faults.
func toolHandler(actionGroup string, fn actiongroup.FunctionSpec, h actiongroup.Handler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		event := actiongroup.Event{
			MessageVersion: actiongroup.MessageVersion,
			ActionGroup:    actionGroup,
			Function:       fn.Name,
			Parameters:     parameters(fn, request.GetArguments()),
		}

		resp := actiongroup.Dispatch(ctx, h, event)
		if err := resp.Err(); err != nil {
			return mcp.NewToolResultError(actiongroup.ErrorMessage(err)), nil
		}
		return mcp.NewToolResultText(resp.Body()), nil
	}
}

// parameters converts declared arguments to action group parameters in
// declaration order. Undeclared arguments are dropped.
func parameters(fn actiongroup.FunctionSpec, args map[string]any) []actiongroup.Parameter {
	var params []actiongroup.Parameter
	for _, p := range fn.Parameters {
		v, ok := args[p.Name]
		if !ok || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString {
			s = fmt.Sprint(v)
		}
		params = append(params, actiongroup.Parameter{Name: p.Name, Type: "string", Value: s})
	}
	return params
}
