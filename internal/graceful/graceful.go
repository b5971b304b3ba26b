package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func MakeSigintChan() chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

// WithSignalCancel returns a context cancelled on SIGINT or SIGTERM. onSignal
// is called with the received signal before cancellation.
func WithSignalCancel(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := MakeSigintChan()
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			if onSignal != nil {
				onSignal(sig)
			}
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
