// Package main provides the rkmeans CLI entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
