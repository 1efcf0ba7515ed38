package main

import (
	"fmt"
	"os"

	"github.com/kagent-dev/opsbridge/internal/cli"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
