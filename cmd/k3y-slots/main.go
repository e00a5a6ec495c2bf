package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/MarkCruse/k3y-open-sessions/api/swagger"
)

// @title K3Y Open Slots API
// @version 1.0.0
// @description Open operating slots on the SKCC K3Y schedule
// @BasePath /api/v1
// @schemes http

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
