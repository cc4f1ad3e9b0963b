// Command crewdir browses the crew marketplace directory from the terminal.
//
// Usage:
//
//	crewdir browse --section talent --gender female --age-min 20 --age-max 30
//	crewdir roles --category crew
//	crewdir team list
//	crewdir team toggle <entity-id>
//
// Configuration comes from CONFIG_PATH (or ./config.yaml) and the environment;
// API_BASE_URL is required. Set AUTH_ACCESS_TOKEN to browse as a signed-in user.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
