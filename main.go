// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"earshot/cmd"
	"earshot/internal/build"
	applog "earshot/internal/log"
)

// main runs one CLI command. Interrupts cancel the command's context so a
// recognition in flight stops at its next stage boundary.
func main() {
	// Development builds lack ldflags; they run with default build info.
	if err := build.Initialize(); err != nil {
		applog.Debugf("build info incomplete: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			applog.Warnf("interrupted")
		} else {
			applog.Errorf("%v", err)
		}
		stop()
		os.Exit(1)
	}
}
