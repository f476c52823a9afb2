package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"salesdw/internal/cli"

	// register all backends with the storage factory.
	// config specifies which to use but we build in support for all of them.
	_ "salesdw/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
