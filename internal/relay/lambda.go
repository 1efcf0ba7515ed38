package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-logr/logr"
)

// NewLambdaHandler returns a Lambda handler for API Gateway and function URL
// proxy events. Malformed bodies and agent or Slack failures are returned as
// errors so the trigger can apply its own retry policy.
func NewLambdaHandler(r *Relay, log logr.Logger) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		ctx = logr.NewContext(ctx, log)

		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return events.APIGatewayProxyResponse{}, fmt.Errorf("%w: invalid base64 body: %v", ErrMalformedEvent, err)
			}
			body = decoded
		}

		resp, err := r.Handle(ctx, proxyHeader(req), body)
		if errors.Is(err, ErrInvalidSignature) {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
		}
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}

		out := events.APIGatewayProxyResponse{StatusCode: resp.StatusCode}
		if len(resp.Body) > 0 {
			out.Body = string(resp.Body)
			out.Headers = map[string]string{"Content-Type": "application/json"}
		}
		return out, nil
	}
}

func proxyHeader(req events.APIGatewayProxyRequest) http.Header {
	h := make(http.Header, len(req.Headers))
	for k, vs := range req.MultiValueHeaders {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	for k, v := range req.Headers {
		h.Set(k, v)
	}
	return h
}
