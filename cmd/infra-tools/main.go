package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/kagent-dev/opsbridge/internal/actiongroup"
	"github.com/kagent-dev/opsbridge/internal/bootstrap"
)

func main() {
	rt, err := bootstrap.Start(context.Background(), "infra-tools", bootstrap.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	rt.Logger.Info("Starting infrastructure action group handler")
	lambda.StartWithOptions(
		bootstrap.FlushAfter(rt, actiongroup.NewLambdaHandler(rt.InfraTools(), rt.Logger)),
		lambda.WithEnableSIGTERM(rt.Close),
	)
}
