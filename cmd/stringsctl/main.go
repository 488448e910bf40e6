// Package main runs the strings command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	stringsctlcmd "github.com/saulotoledo/strings-database/internal/cmd/stringsctl"
	"github.com/saulotoledo/strings-database/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stringsctlcmd.Run(ctx, os.Args[1:], os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
