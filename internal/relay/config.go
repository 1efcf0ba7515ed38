package relay

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/kagent-dev/opsbridge/internal/env"
)

// Config is the process-start configuration of the relay.
type Config struct {
	AgentID       string
	AgentAliasID  string
	SlackBotToken string
	// SigningSecret enables request signature verification when non-empty.
	SigningSecret string
	SlackAPIURL   string
}

// LoadConfig reads Config from the environment. Every missing required
// variable is reported in the returned error.
func LoadConfig() (Config, error) {
	var result *multierror.Error

	required := func(v env.StringVar) string {
		val, ok := v.Lookup()
		if !ok || val == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", v.Name()))
		}
		return val
	}

	cfg := Config{
		AgentID:       required(env.AgentID),
		AgentAliasID:  required(env.AgentAliasID),
		SlackBotToken: required(env.SlackBotToken),
		SigningSecret: env.SlackSigningSecret.Get(),
		SlackAPIURL:   env.SlackAPIURL.Get(),
	}
	return cfg, result.ErrorOrNil()
}
