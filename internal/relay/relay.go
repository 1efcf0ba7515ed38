// Package relay forwards Slack messages to a Bedrock agent session and posts
// the agent's reply back to the originating thread.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Response is the acknowledgment returned to Slack.
type Response struct {
	StatusCode int
	Body       []byte
}

func ok() *Response {
	return &Response{StatusCode: http.StatusOK}
}

// Relay handles Slack Events API requests. It keeps no state between
// requests and is safe for concurrent use.
type Relay struct {
	cfg    Config
	agent  Agent
	poster Poster
}

func New(cfg Config, agent Agent, poster Poster) *Relay {
	return &Relay{cfg: cfg, agent: agent, poster: poster}
}

// Handle processes one Events API body. It returns an error wrapping
// ErrInvalidSignature or ErrMalformedEvent for rejected requests, and the
// underlying error when the agent call or the Slack post fails. In every
// other case it returns a 200 response.
func (r *Relay) Handle(ctx context.Context, header http.Header, body []byte) (*Response, error) {
	log := logr.FromContextOrDiscard(ctx)

	ctx, span := telemetry.Tracer().Start(ctx, "relay.handle")
	defer span.End()

	resp, eventType, err := r.handle(ctx, header, body)
	span.SetAttributes(attribute.String("slack.type", eventType))

	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, ErrInvalidSignature):
		telemetry.RecordRelayEvent(eventType, telemetry.OutcomeDenied)
		span.SetStatus(codes.Error, err.Error())
		log.Info("Rejected Slack request", "reason", err.Error())
	default:
		telemetry.RecordRelayEvent(eventType, telemetry.OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error(err, "Failed to handle Slack event", "type", eventType)
	}
	return resp, err
}

func (r *Relay) handle(ctx context.Context, header http.Header, body []byte) (*Response, string, error) {
	log := logr.FromContextOrDiscard(ctx)

	if r.cfg.SigningSecret != "" {
		if err := VerifySignature(header, body, r.cfg.SigningSecret); err != nil {
			return nil, "", err
		}
	}

	var req EventsAPIRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
	}

	switch req.Type {
	case TypeURLVerification:
		telemetry.RecordRelayEvent(req.Type, telemetry.OutcomeSuccess)
		log.V(1).Info("Answering URL verification")
		return &Response{StatusCode: http.StatusOK, Body: challengeBody(req.Challenge)}, req.Type, nil

	case TypeEventCallback:
		ev := req.Event
		if ev == nil || ev.FromBot() || ev.User == "" || ev.Channel == "" || ev.ThreadRoot() == "" {
			telemetry.RecordRelayEvent(req.Type, telemetry.OutcomeIgnored)
			return ok(), req.Type, nil
		}
		if retry := header.Get(HeaderRetryNum); retry != "" {
			telemetry.RecordRelayEvent(req.Type, telemetry.OutcomeIgnored)
			log.Info("Acknowledging Slack retry", "retryNum", retry, "reason", header.Get("X-Slack-Retry-Reason"), "eventID", req.EventID)
			return ok(), req.Type, nil
		}
		if err := r.converse(ctx, ev); err != nil {
			return nil, req.Type, err
		}
		telemetry.RecordRelayEvent(req.Type, telemetry.OutcomeSuccess)
		return ok(), req.Type, nil
	}

	telemetry.RecordRelayEvent(req.Type, telemetry.OutcomeIgnored)
	return ok(), req.Type, nil
}

// converse runs one agent turn for ev and posts the reply into ev's thread.
func (r *Relay) converse(ctx context.Context, ev *MessageEvent) error {
	threadTS := ev.ThreadRoot()
	sessionID := SessionKey(ev.User, threadTS)

	log := logr.FromContextOrDiscard(ctx).WithValues("sessionID", sessionID, "channel", ev.Channel)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("slack.channel", ev.Channel),
		attribute.String("agent.session_id", sessionID),
	)

	start := time.Now()
	completion, err := r.agent.Invoke(ctx, AgentRequest{
		AgentID:      r.cfg.AgentID,
		AgentAliasID: r.cfg.AgentAliasID,
		SessionID:    sessionID,
		InputText:    ev.Text,
	})
	if err != nil {
		return err
	}
	text, err := Collect(completion)
	if err != nil {
		return err
	}
	telemetry.RecordAgentInvocation(time.Since(start))
	log.Info("Agent replied", "duration", time.Since(start), "replySize", len(text))

	if err := r.poster.PostMessage(ctx, Message{
		Channel:  ev.Channel,
		ThreadTS: threadTS,
		Text:     text,
	}); err != nil {
		return err
	}
	return nil
}
