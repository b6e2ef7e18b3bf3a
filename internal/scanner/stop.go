package scanner

import "sync/atomic"

// StopToken is the cooperative cancellation flag shared by every probe of a
// run. Probes poll it at their checkpoints; it never interrupts a request
// already in flight. A nil token is never stopped.
type StopToken struct {
	stopped atomic.Bool
}

// Stop requests that the current run ends at its next checkpoint.
func (t *StopToken) Stop() {
	t.stopped.Store(true)
}

// Stopped reports whether Stop was called since the last Reset.
func (t *StopToken) Stopped() bool {
	return t != nil && t.stopped.Load()
}

// Reset clears the flag at the beginning of a run.
func (t *StopToken) Reset() {
	t.stopped.Store(false)
}
