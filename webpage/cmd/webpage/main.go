//go:build !solution

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/slon/pageaccess/webpage"
)

func main() {
	cfg, err := webpage.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "webpage: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := webpage.NewCommand(cfg).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "webpage: %v\n", err)
		stop()
		os.Exit(1)
	}
}
