package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/cricket-go/internal/cli/command"
	"github.com/yndnr/cricket-go/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	app := command.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(command.ExitCode(err))
	}
}
