package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// signalContext returns a context canceled by the first SIGINT or SIGTERM.
// Cancellation kills a running ardrive child and aborts metadata downloads;
// the temporary wallet file is still removed on the way out. Once the first
// signal arrives default handling is restored, so a second one terminates
// the process immediately. Callers must call stop when the command returns.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, unregister := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	var released atomic.Bool

	go func() {
		<-ctx.Done()

		if !released.Load() && parent.Err() == nil {
			logger.Info("interrupted, cancelling ardrive command")
		}

		unregister()
	}()

	return ctx, func() {
		released.Store(true)
		unregister()
	}
}

// commandContext is the context a command does its work under: the
// command's context, bound to process signals.
func (cc *CLIContext) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signalContext(parent, cc.Logger)
}
