package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exitCodeInterrupted follows the shell convention of 128 + SIGINT.
const exitCodeInterrupted = 130

// WithSignals returns a copy of parent that is canceled on SIGINT or
// SIGTERM, giving in-flight gateway requests and the interactive shell a
// chance to wind down. A second signal exits the process immediately.
//
// The returned stop function releases the signal handler; calling it more
// than once is safe.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			signal.Stop(sigCh)
			close(stopped)
		})
		cancel()
	}

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-stopped:
			return
		}

		// Cancellation is underway; a second signal means the user wants
		// out now.
		select {
		case <-sigCh:
			os.Exit(exitCodeInterrupted)
		case <-stopped:
		}
	}()

	return ctx, stop
}
