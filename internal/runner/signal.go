package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// handleSignals turns the first interrupt into a stop command and the
// second into cancellation of the scan context. The returned function
// stops listening.
func handleSignals(sess *Session, cancel context.CancelFunc, quiet bool) (stop func()) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		stopped := false
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				if !stopped {
					stopped = true
					sess.Stop()
					if !quiet {
						fmt.Fprintf(os.Stderr, "\r\033[K[*] Stopping, interrupt again to abort\n")
					}
					continue
				}
				cancel()
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
