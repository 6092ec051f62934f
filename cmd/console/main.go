// @title        Formlane Console API
// @version      1.0
// @description  Permission-gated admin console over the Formlane document platform.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/formlane/console/internal/cli"
	"github.com/formlane/console/internal/core/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrInvalidCredentials) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
