package scanner

import (
	"context"
	"iter"
	"net/http"
	"time"
)

// IsFound reports whether a probe status counts as a finding.
func IsFound(status int) bool {
	switch status {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound:
		return true
	}
	return false
}

// PathProber checks candidate paths one at a time with HEAD requests.
type PathProber struct {
	req      *Requester
	throttle *Throttler
	reporter Reporter
}

// NewPathProber creates a prober. A nil throttle paces at MinPathDelay.
func NewPathProber(req *Requester, throttle *Throttler, reporter Reporter) *PathProber {
	return &PathProber{req: req, throttle: throttle, reporter: orDiscard(reporter)}
}

// Scan lazily probes paths in order and yields each finding. onProbed is
// called once per probed path, whether it was found, missing or failed.
// The sequence ends early when stop is set, ctx is done, or the consumer
// stops ranging.
func (p *PathProber) Scan(ctx context.Context, paths []string, stop *StopToken, onProbed func()) iter.Seq[PathFinding] {
	return func(yield func(PathFinding) bool) {
		for _, path := range paths {
			if stop.Stopped() || ctx.Err() != nil {
				return
			}

			resp, err := p.req.Head(ctx, path)
			switch {
			case err != nil:
				p.throttle.RecordError()
				reportf(p.reporter, SeverityError, "Error scanning %s: %v", path, err)
			default:
				p.throttle.RecordStatus(resp.StatusCode)
			}

			if onProbed != nil {
				onProbed()
			}

			if err == nil && IsFound(resp.StatusCode) {
				reportf(p.reporter, SeveritySuccess, "Found path: %s (%d %s)",
					path, resp.StatusCode, http.StatusText(resp.StatusCode))
				if !yield(PathFinding{Path: path, URL: resp.URL, StatusCode: resp.StatusCode}) {
					return
				}
			}

			if !sleep(ctx, p.throttle.Delay()) {
				return
			}
		}
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
