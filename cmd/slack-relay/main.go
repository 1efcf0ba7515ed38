package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/kagent-dev/opsbridge/internal/bootstrap"
	"github.com/kagent-dev/opsbridge/internal/relay"
)

func main() {
	rt, err := bootstrap.Start(context.Background(), "slack-relay", bootstrap.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	r, err := rt.Relay()
	if err != nil {
		rt.Logger.Error(err, "Refusing to start")
		rt.Close()
		os.Exit(1)
	}

	rt.Logger.Info("Starting Slack relay handler")
	lambda.StartWithOptions(
		bootstrap.FlushAfter(rt, relay.NewLambdaHandler(r, rt.Logger)),
		lambda.WithEnableSIGTERM(rt.Close),
	)
}
