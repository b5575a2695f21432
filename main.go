package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamgold/sgld-deployer/command/root"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root.NewRootCommand().Execute(ctx)
}
