package mcptools

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedServer wraps an MCP server so every tool call is traced,
// counted and logged.
type InstrumentedServer struct {
	*server.MCPServer
	log logr.Logger
}

// NewInstrumentedServer creates an MCP server with instrumented tools.
func NewInstrumentedServer(name, version string, log logr.Logger) *InstrumentedServer {
	return &InstrumentedServer{
		MCPServer: server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		log:       log,
	}
}

// AddTool registers tool with an instrumented handler.
func (s *InstrumentedServer) AddTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.MCPServer.AddTool(tool, instrumentToolHandler(tool.Name, s.log, handler))
}

func instrumentToolHandler(toolName string, log logr.Logger, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := telemetry.Tracer().Start(ctx, "mcp.tool_call",
			trace.WithAttributes(
				attribute.String("tool.name", toolName),
				attribute.Int("tool.argument_count", len(request.GetArguments())),
			),
		)
		defer span.End()

		log := log.WithValues("tool", toolName)
		ctx = logr.NewContext(ctx, log)

		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			telemetry.RecordToolCall(toolName, telemetry.OutcomeError)
			log.Error(err, "Tool call failed", "duration", duration)
		case result != nil && result.IsError:
			span.SetStatus(codes.Error, "Tool returned error result")
			telemetry.RecordToolCall(toolName, telemetry.OutcomeError)
			log.Info("Tool returned error result", "duration", duration)
		default:
			span.SetStatus(codes.Ok, "Tool call successful")
			telemetry.RecordToolCall(toolName, telemetry.OutcomeSuccess)
			log.V(1).Info("Tool call completed", "duration", duration)
		}
		if result != nil {
			span.SetAttributes(attribute.Int("result.content_count", len(result.Content)))
		}
		return result, err
	}
}
