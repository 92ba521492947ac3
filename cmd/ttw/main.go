package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sakly-Saber/TraceTrade-sub000/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
