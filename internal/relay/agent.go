package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// AgentRequest is one turn sent to the agent runtime.
type AgentRequest struct {
	AgentID      string
	AgentAliasID string
	SessionID    string
	InputText    string
}

// Completion is the streamed reply of one agent turn.
// *bedrockagentruntime.InvokeAgentEventStream satisfies it.
type Completion interface {
	Events() <-chan types.ResponseStream
	Err() error
	Close() error
}

var _ Completion = (*bedrockagentruntime.InvokeAgentEventStream)(nil)

// Agent starts agent turns.
type Agent interface {
	Invoke(ctx context.Context, req AgentRequest) (Completion, error)
}

// InvokeAgentAPI is the subset of the Bedrock agent runtime client used by
// BedrockAgent.
type InvokeAgentAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// BedrockAgent invokes a Bedrock agent through the agent runtime API.
type BedrockAgent struct {
	client InvokeAgentAPI
}

var _ Agent = (*BedrockAgent)(nil)

func NewBedrockAgent(client InvokeAgentAPI) *BedrockAgent {
	return &BedrockAgent{client: client}
}

// NewBedrockAgentFromConfig creates a BedrockAgent with a client built from cfg.
func NewBedrockAgentFromConfig(cfg aws.Config) *BedrockAgent {
	return NewBedrockAgent(bedrockagentruntime.NewFromConfig(cfg))
}

func (a *BedrockAgent) Invoke(ctx context.Context, req AgentRequest) (Completion, error) {
	out, err := a.client.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(req.AgentID),
		AgentAliasId: aws.String(req.AgentAliasID),
		SessionId:    aws.String(req.SessionID),
		InputText:    aws.String(req.InputText),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke agent %s: %w", req.AgentID, err)
	}
	return out.GetStream(), nil
}

// Collect drains c and concatenates the bytes of every chunk event in
// arrival order. Events that are not chunks, or chunks without bytes, are
// skipped. A stream error discards the partial text. c is always closed.
func Collect(c Completion) (string, error) {
	defer c.Close()

	var sb strings.Builder
	for event := range c.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok || len(chunk.Value.Bytes) == 0 {
			continue
		}
		sb.Write(chunk.Value.Bytes)
	}
	if err := c.Err(); err != nil {
		return "", fmt.Errorf("agent response stream failed: %w", err)
	}
	return sb.String(), nil
}
