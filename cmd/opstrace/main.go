// Package main is the entry point for the opstrace CLI.
//
// opstrace creates multi-tenant observability instances on AWS or GCP. It
// deploys the opstrace controller into the instance's Kubernetes cluster
// and waits until every tenant's data API and UI is reachable.
//
// For detailed usage information, run:
//
//	opstrace --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/starrohan999/opstrace/cmd/opstrace/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
