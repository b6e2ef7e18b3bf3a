package scanner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoadGenerator sends rate-controlled GET bursts at the origin.
type LoadGenerator struct {
	req      *Requester
	reporter Reporter
	window   time.Duration
}

// NewLoadGenerator creates a generator with one-second windows.
func NewLoadGenerator(req *Requester, reporter Reporter) *LoadGenerator {
	return &LoadGenerator{req: req, reporter: orDiscard(reporter), window: time.Second}
}

// windowTally collects the outcome of one window's requests.
type windowTally struct {
	mu        sync.Mutex
	sent      int
	succeeded int
	failed    int
	elapsed   time.Duration
}

// Run dispatches rps requests per window for windows windows, spaced
// evenly within each window. Any HTTP answer counts as a success; only
// transport errors are failures. Latency is measured from the start of the
// window the request belongs to. onWindow receives the cumulative counters
// after every window. Stop is honored before each window and each dispatch;
// requests already sent are awaited.
func (g *LoadGenerator) Run(ctx context.Context, rps, windows int, stop *StopToken, onWindow func(StressSnapshot)) StressSnapshot {
	var snap StressSnapshot
	if rps < 1 {
		return snap
	}

	reportf(g.reporter, SeverityInfo, "Starting stress test with %d req/s for %d seconds (%d total)", rps, windows, rps*windows)

	limiter := rate.NewLimiter(rate.Every(g.window/time.Duration(rps)), 1)
	var total time.Duration

	for w := 0; w < windows; w++ {
		if stop.Stopped() || ctx.Err() != nil {
			break
		}

		start := time.Now()
		tally := g.runWindow(ctx, limiter, rps, start, stop)

		snap.RequestsSent += tally.sent
		snap.Successful += tally.succeeded
		snap.Failed += tally.failed
		total += tally.elapsed
		if snap.RequestsSent > 0 {
			avg := total / time.Duration(snap.RequestsSent)
			snap.AverageTimeMs = avg.Round(time.Millisecond).Milliseconds()
		}
		if onWindow != nil {
			onWindow(snap)
		}

		if w < windows-1 && !stop.Stopped() {
			if !sleep(ctx, g.window-time.Since(start)) {
				break
			}
		}
	}

	reportf(g.reporter, SeveritySuccess, "Stress test completed: %d successful, %d failed", snap.Successful, snap.Failed)
	return snap
}

func (g *LoadGenerator) runWindow(ctx context.Context, limiter *rate.Limiter, rps int, start time.Time, stop *StopToken) *windowTally {
	tally := &windowTally{}
	var wg sync.WaitGroup

	for i := 0; i < rps; i++ {
		if stop.Stopped() {
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.req.Get(ctx, "/")
			elapsed := time.Since(start)

			tally.mu.Lock()
			defer tally.mu.Unlock()
			tally.sent++
			tally.elapsed += elapsed
			if err != nil {
				tally.failed++
			} else {
				tally.succeeded++
			}
		}()
	}

	wg.Wait()
	return tally
}
