package relay

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("AGENT_ID", "AGENT1")
	t.Setenv("AGENT_ALIAS_ID", "ALIAS1")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_SIGNING_SECRET", "s3cr3t")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{
		AgentID:       "AGENT1",
		AgentAliasID:  "ALIAS1",
		SlackBotToken: "xoxb-test",
		SigningSecret: "s3cr3t",
		SlackAPIURL:   "https://slack.com/api/",
	}, cfg)
}

func TestLoadConfig_ReportsEveryMissingVariable(t *testing.T) {
	t.Setenv("AGENT_ID", "")
	t.Setenv("AGENT_ALIAS_ID", "ALIAS1")
	t.Setenv("SLACK_BOT_TOKEN", "")
	os.Unsetenv("SLACK_BOT_TOKEN")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AGENT_ID is required")
	assert.Contains(t, err.Error(), "SLACK_BOT_TOKEN is required")
	assert.NotContains(t, err.Error(), "AGENT_ALIAS_ID")
}
