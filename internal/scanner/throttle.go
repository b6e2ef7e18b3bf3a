package scanner

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// MinPathDelay is the pause after each path probe. The adaptive
// throttle may raise it but never lowers it.
const MinPathDelay = 300 * time.Millisecond

// Throttler paces the path prober. When enabled, 429/503 answers or a run
// of transport errors double the delay; healthy answers halve it back
// toward the base.
type Throttler struct {
	mu           sync.Mutex
	baseDelay    time.Duration
	currentDelay time.Duration
	maxDelay     time.Duration
	consecutive  int
	enabled      bool
	logger       *slog.Logger
}

// NewThrottler creates a throttler with the given base delay. A nil logger
// uses slog.Default().
func NewThrottler(baseDelay time.Duration, adaptive bool, logger *slog.Logger) *Throttler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Throttler{
		baseDelay:    baseDelay,
		currentDelay: baseDelay,
		maxDelay:     30 * time.Second,
		enabled:      adaptive,
		logger:       logger,
	}
}

// Delay returns the pause to take after the current probe.
func (t *Throttler) Delay() time.Duration {
	if t == nil {
		return MinPathDelay
	}
	if !t.enabled {
		return t.baseDelay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentDelay
}

// RecordStatus feeds a response status into the throttle.
func (t *Throttler) RecordStatus(statusCode int) {
	if t == nil || !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable {
		t.consecutive++
		if t.backOff() {
			t.logger.Warn("rate limited, backing off", "status", statusCode, "delay", t.currentDelay)
		}
		return
	}

	if t.consecutive > 0 {
		t.consecutive = 0
		next := max(t.currentDelay/2, t.baseDelay)
		if next != t.currentDelay {
			t.currentDelay = next
			t.logger.Debug("throttle recovering", "delay", t.currentDelay)
		}
	}
}

// RecordError counts a transport error; three in a row back off.
func (t *Throttler) RecordError() {
	if t == nil || !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= 3 && t.backOff() {
		t.logger.Warn("repeated errors, backing off", "delay", t.currentDelay)
	}
}

// backOff doubles the delay within [500ms, maxDelay]. Callers hold mu.
func (t *Throttler) backOff() bool {
	next := min(max(t.currentDelay*2, 500*time.Millisecond), t.maxDelay)
	if next == t.currentDelay {
		return false
	}
	t.currentDelay = next
	return true
}
