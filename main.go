package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/sqfa/cli"
	"github.com/ardnew/sqfa/log"
	"github.com/ardnew/sqfa/pkg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	switch {
	case err == nil:
	case errors.Is(err, pkg.ErrDiagnostics[0]):
		// Diagnostics were already reported.
		os.Exit(1)
	default:
		log.Error("run failed", slog.Any("error", err))
		os.Exit(2)
	}
}
