package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/argo-float-etl/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rc := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rc.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
