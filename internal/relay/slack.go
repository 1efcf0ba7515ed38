package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Message is a threaded reply posted through chat.postMessage.
type Message struct {
	Channel  string `json:"channel"`
	ThreadTS string `json:"thread_ts"`
	Text     string `json:"text"`
}

// Poster delivers replies to Slack.
type Poster interface {
	PostMessage(ctx context.Context, msg Message) error
}

// SlackClient posts messages to the Slack Web API with a bot token.
type SlackClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

var _ Poster = (*SlackClient)(nil)

// NewSlackClient creates a SlackClient. baseURL must end with a slash, as
// slack.APIURL does; one is appended otherwise. A nil client gets a traced
// default transport.
func NewSlackClient(baseURL, token string, client *http.Client) *SlackClient {
	if baseURL == "" {
		baseURL = slack.APIURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &SlackClient{BaseURL: baseURL, Token: token, Client: client}
}

// PostMessage posts msg as JSON. A response with ok=false is an error.
func (c *SlackClient) PostMessage(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to post message: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result slack.SlackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode chat.postMessage response: %w", err)
	}
	if !result.Ok {
		return fmt.Errorf("chat.postMessage failed: %s", result.Error)
	}
	return nil
}
