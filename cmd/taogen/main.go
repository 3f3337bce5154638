package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/romilpunetha/tao/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := commands.Execute(ctx, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}
