// ./main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/inventa-tools/inventa-cli/cmd"
)

// main is the entry point for the Inventa CLI application.
func main() {
	// Commands receive this context so an interrupt aborts the browser
	// session cleanly instead of leaving the process behind.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
