package env

import "time"

// Conversation relay.
var (
	AgentID = RegisterRequiredStringVar(
		"AGENT_ID",
		"Bedrock agent identifier the relay invokes.",
		ComponentRelay,
	)

	AgentAliasID = RegisterRequiredStringVar(
		"AGENT_ALIAS_ID",
		"Bedrock agent alias identifier the relay invokes.",
		ComponentRelay,
	)

	SlackBotToken = RegisterRequiredStringVar(
		"SLACK_BOT_TOKEN",
		"Bot token used as the bearer credential for chat.postMessage.",
		ComponentRelay,
	)

	SlackSigningSecret = RegisterStringVar(
		"SLACK_SIGNING_SECRET",
		"",
		"When set, inbound Slack requests must carry a valid X-Slack-Signature.",
		ComponentRelay,
	)

	SlackAPIURL = RegisterStringVar(
		"SLACK_API_URL",
		"https://slack.com/api/",
		"Base URL of the Slack Web API.",
		ComponentRelay,
	)
)

// Action group dispatchers.
var (
	SensitiveResources = RegisterStringVar(
		"SENSITIVE_RESOURCES",
		"finance-db,hr-payroll-db",
		"Comma separated resource identifiers that require manager approval. A value naming no resources keeps the default.",
		ComponentDispatchers,
	)
)

// Long-running servers started by opsctl.
var (
	Port = RegisterStringVar(
		"PORT",
		"8080",
		"Port the relay HTTP server listens on.",
		ComponentServer,
	)

	ToolsPort = RegisterStringVar(
		"TOOLS_PORT",
		"8084",
		"Port the MCP tool server listens on.",
		ComponentServer,
	)

	ShutdownTimeout = RegisterDurationVar(
		"SHUTDOWN_TIMEOUT",
		5*time.Second,
		"Graceful shutdown timeout for the HTTP servers.",
		ComponentServer,
	)
)

// Shared process runtime.
var (
	AWSRegion = RegisterStringVar(
		"AWS_REGION",
		"",
		"AWS region for IAM, RDS, EC2 and Bedrock clients. Falls back to the SDK default chain.",
		ComponentRuntime,
	)

	LogLevel = RegisterStringVar(
		"LOG_LEVEL",
		"info",
		"Log level (debug, info, warn, error).",
		ComponentRuntime,
	)

	LogDevelopment = RegisterBoolVar(
		"LOG_DEVELOPMENT",
		false,
		"Use the human readable development log encoder.",
		ComponentRuntime,
	)

	OtelTracingEnabled = RegisterBoolVar(
		"OTEL_TRACING_ENABLED",
		false,
		"Export OpenTelemetry traces over OTLP gRPC.",
		ComponentRuntime,
	)
)
