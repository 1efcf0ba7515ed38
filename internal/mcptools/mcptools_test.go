package mcptools

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/actiongroup"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToolset struct {
	actiongroup.HandlerFunc
	specs []actiongroup.FunctionSpec
}

func (f fakeToolset) Functions() []actiongroup.FunctionSpec { return f.specs }

type recordingAdder struct {
	tools    []mcp.Tool
	handlers map[string]server.ToolHandlerFunc
}

func (r *recordingAdder) AddTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	if r.handlers == nil {
		r.handlers = map[string]server.ToolHandlerFunc{}
	}
	r.tools = append(r.tools, tool)
	r.handlers[tool.Name] = handler
}

var greetSpec = actiongroup.FunctionSpec{
	Name:        "greet",
	Description: "Greet a user",
	Parameters: []actiongroup.ParameterSpec{
		{Name: "user_id", Description: "user", Required: true},
		{Name: "greeting", Description: "optional greeting"},
	},
}

func newToolset(fn actiongroup.HandlerFunc) fakeToolset {
	return fakeToolset{HandlerFunc: fn, specs: []actiongroup.FunctionSpec{greetSpec}}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestRegister(t *testing.T) {
	adder := &recordingAdder{}
	Register(adder, "AccessTools", newToolset(func(context.Context, string, actiongroup.Params) (any, error) {
		return nil, nil
	}))

	require.Len(t, adder.tools, 1)
	tool := adder.tools[0]
	assert.Equal(t, "greet", tool.Name)
	assert.Equal(t, "Greet a user", tool.Description)
	assert.Contains(t, tool.InputSchema.Properties, "user_id")
	assert.Contains(t, tool.InputSchema.Properties, "greeting")
	assert.Equal(t, []string{"user_id"}, tool.InputSchema.Required)
}

func TestToolHandler_Success(t *testing.T) {
	var gotFunction string
	var gotParams actiongroup.Params
	adder := &recordingAdder{}
	Register(adder, "AccessTools", newToolset(func(_ context.Context, function string, params actiongroup.Params) (any, error) {
		gotFunction, gotParams = function, params
		return map[string]string{"message": "hi " + params["user_id"]}, nil
	}))

	result, err := adder.handlers["greet"](context.Background(), callRequest(map[string]any{
		"user_id":    "alice",
		"greeting":   42,
		"undeclared": "dropped",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"message":"hi alice"}`, resultText(t, result))

	assert.Equal(t, "greet", gotFunction)
	assert.Equal(t, actiongroup.Params{"user_id": "alice", "greeting": "42"}, gotParams)
}

func TestToolHandler_Error(t *testing.T) {
	adder := &recordingAdder{}
	Register(adder, "AccessTools", newToolset(func(context.Context, string, actiongroup.Params) (any, error) {
		return nil, errors.New("backend unavailable")
	}))

	result, err := adder.handlers["greet"](context.Background(), callRequest(map[string]any{"user_id": "alice"}))
	require.NoError(t, err, "handler errors are reported as tool results")
	assert.True(t, result.IsError)
	assert.Equal(t, "backend unavailable", resultText(t, result))
}

func TestParameters(t *testing.T) {
	params := parameters(greetSpec, map[string]any{"greeting": "hello", "user_id": "bob", "other": 1})

	assert.Equal(t, []actiongroup.Parameter{
		{Name: "user_id", Type: "string", Value: "bob"},
		{Name: "greeting", Type: "string", Value: "hello"},
	}, params)
	assert.Empty(t, parameters(greetSpec, nil))
}

func TestInstrumentedServer(t *testing.T) {
	s := NewInstrumentedServer("opsbridge-test", "0.0.1", logr.Discard())
	require.NotNil(t, s.MCPServer)

	require.NotPanics(t, func() {
		Register(s, "AccessTools", newToolset(func(context.Context, string, actiongroup.Params) (any, error) {
			return "ok", nil
		}))
	})
}

func TestInstrumentToolHandler(t *testing.T) {
	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		wantErr bool
		isError bool
	}{
		{
			name: "success",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("ok"), nil
			},
		},
		{
			name: "error result",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultError("failed"), nil
			},
			isError: true,
		},
		{
			name: "handler error",
			handler: func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, errors.New("transport")
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawLogger bool
			wrapped := instrumentToolHandler("greet", logr.Discard(), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				_, err := logr.FromContext(ctx)
				sawLogger = err == nil
				return tt.handler(ctx, req)
			})

			result, err := wrapped(context.Background(), callRequest(nil))
			assert.True(t, sawLogger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.isError, result.IsError)
		})
	}
}
