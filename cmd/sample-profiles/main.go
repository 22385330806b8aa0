package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/birthprofile/internal/sampleprofiles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sampleprofiles.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
