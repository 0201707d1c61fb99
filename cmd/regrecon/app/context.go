package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals creates a context cancelled on interrupt or
// termination, so a long comparison pass can stop cleanly.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Context is ContextWithSignals over context.Background().
func Context() (context.Context, context.CancelFunc) {
	return ContextWithSignals(context.Background())
}
