package actiongroup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler executes one named function. Implementations return a
// JSON-serializable result or an error; they never build envelopes.
type Handler interface {
	Invoke(ctx context.Context, function string, params Params) (any, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, function string, params Params) (any, error)

func (f HandlerFunc) Invoke(ctx context.Context, function string, params Params) (any, error) {
	return f(ctx, function, params)
}

// Dispatch runs event against h and always returns a well-formed envelope.
// Handler errors, serialization failures and panics are flattened into an
// {"error": "..."} body; nothing is surfaced to the caller as a Go error.
func Dispatch(ctx context.Context, h Handler, event Event) Response {
	log := logr.FromContextOrDiscard(ctx).WithValues(
		"actionGroup", event.ActionGroup,
		"function", event.Function,
		"sessionID", event.SessionID,
	)

	ctx, span := telemetry.Tracer().Start(ctx, "actiongroup.dispatch",
		trace.WithAttributes(
			attribute.String("action_group", event.ActionGroup),
			attribute.String("function", event.Function),
			attribute.Int("parameters", len(event.Parameters)),
		),
	)
	defer span.End()

	start := time.Now()
	body, err := invoke(ctx, h, event)
	duration := time.Since(start)

	outcome := telemetry.OutcomeSuccess
	if err != nil {
		outcome = telemetry.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error(err, "Action invocation failed", "duration", duration)
		body = errorBody(err)
	} else {
		span.SetStatus(codes.Ok, "Action invocation completed")
		log.Info("Action invocation completed", "duration", duration, "bodySize", len(body))
	}

	metricFunction := event.Function
	var unknown *UnknownFunctionError
	if errors.As(err, &unknown) {
		metricFunction = "unknown"
	}
	telemetry.RecordDispatch(metricFunction, outcome, duration)

	resp := NewResponse(event.ActionGroup, event.Function, body)
	resp.err = err
	return resp
}

func invoke(ctx context.Context, h Handler, event Event) (body string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	result, err := h.Invoke(ctx, event.Function, event.Params())
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize result: %w", err)
	}
	return string(b), nil
}

func errorBody(err error) string {
	b, _ := json.Marshal(map[string]string{"error": ErrorMessage(err)})
	return string(b)
}

// NewLambdaHandler returns a Lambda handler function for h. The logger is
// attached to every invocation context.
func NewLambdaHandler(h Handler, log logr.Logger) func(context.Context, Event) (Response, error) {
	return func(ctx context.Context, event Event) (Response, error) {
		return Dispatch(logr.NewContext(ctx, log), h, event), nil
	}
}
