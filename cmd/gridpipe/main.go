package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/askiada/go-gridpipe/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Execute(ctx, os.Args[1:])

	stop()

	if err != nil {
		os.Exit(1)
	}
}
