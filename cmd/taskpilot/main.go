package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harun/taskpilot/internal/cli"
	"github.com/harun/taskpilot/internal/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := tracing.InitOpenTelemetry("taskpilot"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: tracing disabled: %v\n", err)
	}

	err := cli.Execute(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_ = tracing.ShutdownOpenTelemetry(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
