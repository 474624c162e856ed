package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/packfeed/upackctl/internal/cli"
)

// main is the single error boundary: every operation failure funnels
// through here and gets formatted for the user.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✘ %s\n", err.Error())
		os.Exit(1)
	}
}
