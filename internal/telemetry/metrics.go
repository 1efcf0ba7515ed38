package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeIgnored = "ignored"
	OutcomeDenied  = "denied"
)

// Registry holds every opsbridge collector. It is served on /metrics by the
// long-running servers and is harmless to populate inside Lambda.
var Registry = prometheus.NewRegistry()

var (
	dispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsbridge_action_invocations_total",
		Help: "Action group invocations by function and outcome.",
	}, []string{"function", "outcome"})

	dispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "opsbridge_action_invocation_duration_seconds",
		Help:    "Duration of action group invocations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"function"})

	relayEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsbridge_relay_events_total",
		Help: "Slack events handled by the conversation relay, by event type and outcome.",
	}, []string{"type", "outcome"})

	agentInvocationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "opsbridge_agent_invocation_duration_seconds",
		Help:    "Time from InvokeAgent to a fully reassembled reply.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	toolCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "opsbridge_mcp_tool_calls_total",
		Help: "MCP tool calls by tool and outcome.",
	}, []string{"tool", "outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		dispatchTotal,
		dispatchDuration,
		relayEventsTotal,
		agentInvocationDuration,
		toolCallsTotal,
	)
}

// RecordDispatch records one action group invocation.
func RecordDispatch(function, outcome string, duration time.Duration) {
	dispatchTotal.WithLabelValues(function, outcome).Inc()
	dispatchDuration.WithLabelValues(function).Observe(duration.Seconds())
}

// RecordRelayEvent records one inbound Slack event.
func RecordRelayEvent(eventType, outcome string) {
	relayEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordAgentInvocation records the latency of one agent round trip.
func RecordAgentInvocation(duration time.Duration) {
	agentInvocationDuration.Observe(duration.Seconds())
}

// RecordToolCall records one MCP tool call.
func RecordToolCall(tool, outcome string) {
	toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the opsbridge registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
