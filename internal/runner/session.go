package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/scanner"
)

// ErrInvalidTarget is recorded on the terminal result when the target URL
// cannot be reduced to an http(s) origin.
var ErrInvalidTarget = errors.New("invalid target URL")

// Status is the synchronous answer to a Start or Stop command.
type Status string

const (
	StatusStarted  Status = "started"
	StatusBusy     Status = "busy"
	StatusStopping Status = "stopping"
)

// Publisher delivers scan events to observers. *events.Dispatcher
// implements it.
type Publisher interface {
	Dispatch(ctx context.Context, event events.Event)
}

// SessionOptions configures the probes of every run started by a Session.
type SessionOptions struct {
	// Counter counts page resources for the performance prober. Nil
	// reports resource counting as unavailable.
	Counter scanner.ResourceCounter

	// Timeout bounds each HTTP request. Zero uses the requester default.
	Timeout time.Duration

	// PathDelay is the pause after each path probe. Zero uses
	// scanner.MinPathDelay.
	PathDelay time.Duration

	// AdaptiveThrottle lets 429/503 answers raise PathDelay.
	AdaptiveThrottle bool

	Logger *slog.Logger
}

// Session admits one scan at a time and carries the stop command to it.
// It is safe for concurrent use.
type Session struct {
	pub    Publisher
	opts   SessionOptions
	logger *slog.Logger

	running atomic.Bool
	stop    scanner.StopToken

	mu   sync.Mutex
	done chan struct{}
}

// NewSession creates an idle session publishing to pub.
func NewSession(pub Publisher, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PathDelay <= 0 {
		opts.PathDelay = scanner.MinPathDelay
	}
	return &Session{pub: pub, opts: opts, logger: logger}
}

// Start begins a scan of cfg in the background and returns StatusStarted,
// or returns StatusBusy without side effects when a scan is already
// running. tab identifies the page handed to the resource counter; empty
// means the target URL. ctx bounds the whole run and is meant to be
// cancelled only on shutdown; use Stop to end a scan early.
func (s *Session) Start(ctx context.Context, cfg config.ScanConfig, tab string) Status {
	if !s.running.CompareAndSwap(false, true) {
		return StatusBusy
	}
	s.stop.Reset()

	done := make(chan struct{})
	s.mu.Lock()
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, cfg, tab, done)
	return StatusStarted
}

// Stop asks the running scan, if any, to end at its next checkpoint. It
// never blocks.
func (s *Session) Stop() Status {
	s.stop.Stop()
	return StatusStopping
}

// Running reports whether a scan is in flight.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Wait blocks until the most recently started scan has released the
// session. It returns immediately if no scan was ever started.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Session) run(ctx context.Context, cfg config.ScanConfig, tab string, done chan struct{}) {
	defer func() {
		s.running.Store(false)
		close(done)
	}()

	sc := newScan(s, cfg, tab)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan panicked", "scan_id", sc.result.ID, "panic", r)
			sc.fail(ctx, panicError{r})
		}
	}()

	if err := sc.execute(ctx); err != nil {
		sc.fail(ctx, err)
	}
}

type panicError struct{ v any }

func (e panicError) Error() string { return fmt.Sprintf("internal error: %v", e.v) }
