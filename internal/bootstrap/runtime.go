// Package bootstrap builds the process-wide runtime shared by every
// opsbridge entry point: logger, tracing and AWS configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-logr/logr"
	"github.com/kagent-dev/opsbridge/internal/access"
	"github.com/kagent-dev/opsbridge/internal/env"
	"github.com/kagent-dev/opsbridge/internal/infra"
	"github.com/kagent-dev/opsbridge/internal/logger"
	"github.com/kagent-dev/opsbridge/internal/relay"
	"github.com/kagent-dev/opsbridge/internal/telemetry"
	"go.uber.org/zap"
)

const flushTimeout = 2 * time.Second

// Options override environment defaults. Zero values keep the environment.
type Options struct {
	LogLevel string
	Region   string
}

// Runtime holds the shared, immutable process state.
type Runtime struct {
	Logger logr.Logger
	AWS    aws.Config

	zapLogger   *zap.Logger
	stopTracing func()
	flushTraces func(context.Context) error
}

// Start builds the logger, installs tracing and loads the AWS configuration.
// component names the entry point in logs and trace resources.
func Start(ctx context.Context, component string, opts Options) (*Runtime, error) {
	level := opts.LogLevel
	if level == "" {
		level = env.LogLevel.Get()
	}
	log, zapLogger := logger.New(level, env.LogDevelopment.Get())
	log = log.WithName(component)

	stopTracing, err := telemetry.InitTracing(ctx, env.OtelTracingEnabled.Get(), component)
	if err != nil {
		logger.Sync(zapLogger)
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	region := opts.Region
	if region == "" {
		region = env.AWSRegion.Get()
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		stopTracing()
		logger.Sync(zapLogger)
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.V(1).Info("Runtime started", "region", awsCfg.Region, "tracing", env.OtelTracingEnabled.Get())
	return &Runtime{
		Logger:      log,
		AWS:         awsCfg,
		zapLogger:   zapLogger,
		stopTracing: stopTracing,
		flushTraces: telemetry.ForceFlush,
	}, nil
}

// Close flushes traces and logs.
func (r *Runtime) Close() {
	if r.stopTracing != nil {
		r.stopTracing()
	}
	logger.Sync(r.zapLogger)
}

// Flush exports buffered spans and syncs the logger. It must run before a
// Lambda invocation returns; the sandbox is frozen afterwards.
func (r *Runtime) Flush(ctx context.Context) {
	if r.flushTraces != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		defer cancel()
		if err := r.flushTraces(ctx); err != nil {
			r.Logger.Error(err, "Failed to flush traces")
		}
	}
	logger.Sync(r.zapLogger)
}

// FlushAfter wraps a Lambda handler so that every invocation flushes the
// runtime before returning.
func FlushAfter[E, R any](r *Runtime, h func(context.Context, E) (R, error)) func(context.Context, E) (R, error) {
	return func(ctx context.Context, event E) (R, error) {
		defer r.Flush(ctx)
		return h(ctx, event)
	}
}

// SensitiveResources is the sensitive resource set configured for this
// process. A SENSITIVE_RESOURCES value naming no resources falls back to
// access.DefaultSensitiveResources.
func SensitiveResources() access.ResourceSet {
	ids := env.SensitiveResources.List()
	if len(ids) == 0 {
		ids = access.DefaultSensitiveResources
	}
	return access.NewResourceSet(ids...)
}

// AccessTools builds the access dispatcher.
func (r *Runtime) AccessTools() *access.Tools {
	set := SensitiveResources()
	r.Logger.V(1).Info("Sensitive resources loaded", "resources", set.List())
	return access.NewFromConfig(r.AWS, set)
}

// InfraTools builds the infrastructure dispatcher.
func (r *Runtime) InfraTools() *infra.Tools {
	return infra.NewFromConfig(r.AWS)
}

// Relay builds the conversation relay. It fails when required relay
// configuration is missing.
func (r *Runtime) Relay() (*relay.Relay, error) {
	cfg, err := relay.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid relay configuration: %w", err)
	}
	return relay.New(
		cfg,
		relay.NewBedrockAgentFromConfig(r.AWS),
		relay.NewSlackClient(cfg.SlackAPIURL, cfg.SlackBotToken, nil),
	), nil
}
