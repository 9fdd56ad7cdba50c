// Copyright (c) genomekit 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS termination signals so the CLI can
// shut down cleanly. The first signal of a type is logged and forwarded via
// context cancellation on the second occurrence.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genomekit/samcall/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a signal channel subscribed to the termination signals, or to
// the explicit set given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "subscribing to signals", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Watch monitors the signal channel and cancels the context when a second
// signal of the same type arrives.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Info(ctx, "received second signal, terminating", "signal", sig.String())

			// The channel stays open: closing it while still registered
			// with signal.Notify would panic the process on a later signal.
			signal.Stop(sigCh)
			cancel()

			return
		}

		ctxlog.Info(ctx, "received signal", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
