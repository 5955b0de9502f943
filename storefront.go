package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront/pkg/app"
)

// main exposes a root-level entry point so operators can simply run `go run storefront.go`.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args[1:], nil); err != nil {
		stop()
		zap.Must(zap.NewProduction()).Fatal("application stopped with error", zap.Error(err))
	}
}
