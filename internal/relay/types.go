package relay

import (
	"encoding/json"
	"errors"
)

// Slack Events API envelope types handled by the relay.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// HeaderRetryNum is set by Slack on redelivered events.
const HeaderRetryNum = "X-Slack-Retry-Num"

// ErrMalformedEvent is wrapped by every error caused by an unparseable body.
var ErrMalformedEvent = errors.New("malformed slack event")

// EventsAPIRequest is the outer body Slack posts to the events endpoint.
type EventsAPIRequest struct {
	Type      string        `json:"type"`
	Challenge string        `json:"challenge,omitempty"`
	Token     string        `json:"token,omitempty"`
	TeamID    string        `json:"team_id,omitempty"`
	EventID   string        `json:"event_id,omitempty"`
	Event     *MessageEvent `json:"event,omitempty"`
}

// MessageEvent is the inner event of an event_callback.
type MessageEvent struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
	User     string `json:"user"`
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// ThreadRoot returns the thread root timestamp, or the message's own
// timestamp when it starts a new thread.
func (e *MessageEvent) ThreadRoot() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}

// FromBot reports whether the message was posted by a bot, including this one.
func (e *MessageEvent) FromBot() bool {
	return e.BotID != ""
}

// SessionKey correlates a Slack user and thread to one agent session.
func SessionKey(user, threadTS string) string {
	return user + "_" + threadTS
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

func challengeBody(token string) []byte {
	b, _ := json.Marshal(challengeResponse{Challenge: token})
	return b
}
