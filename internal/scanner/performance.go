package scanner

import (
	"context"
	"math"
	"strconv"

	"github.com/maxvaer/webrecon/internal/config"
)

// ResourceCounter counts the script, stylesheet and image elements of a
// page. tab identifies the page; for CLI runs it is the target URL.
type ResourceCounter interface {
	Count(ctx context.Context, tab string) (ResourceCounts, error)
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with binary units and at most two decimals, with
// trailing zeros trimmed: 1536 is "1.5 KB", 1048576 is "1 MB".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := 0
	for unit := int64(1024); n >= unit && i < len(byteUnits)-1; unit *= 1024 {
		i++
	}
	v := float64(n) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// PerformanceProber takes the enabled performance measurements. Each one
// issues its own request and fails independently.
type PerformanceProber struct {
	req      *Requester
	counter  ResourceCounter
	reporter Reporter
}

// NewPerformanceProber creates a prober. counter may be nil, in which case
// resource counting is reported as unavailable.
func NewPerformanceProber(req *Requester, counter ResourceCounter, reporter Reporter) *PerformanceProber {
	return &PerformanceProber{req: req, counter: counter, reporter: orDiscard(reporter)}
}

// Measure runs the measurements enabled in opts against the origin. tab is
// handed to the resource counter.
func (p *PerformanceProber) Measure(ctx context.Context, opts config.PerformanceOptions, tab string) *PerformanceSnapshot {
	snap := &PerformanceSnapshot{}

	if opts.LoadTime {
		if resp, err := p.req.Get(ctx, "/"); err != nil {
			reportf(p.reporter, SeverityError, "Error measuring load time: %v", err)
		} else {
			ms := resp.Duration.Milliseconds()
			snap.LoadTimeMs = &ms
			reportf(p.reporter, SeverityInfo, "Page load time: %d ms", ms)
		}
	}

	if opts.ResponseSize {
		if resp, err := p.req.Get(ctx, "/"); err != nil {
			reportf(p.reporter, SeverityError, "Error measuring response size: %v", err)
		} else {
			size := FormatBytes(int64(len(resp.Body)))
			snap.ResponseSize = &size
			reportf(p.reporter, SeverityInfo, "Response size: %s", size)
		}
	}

	if opts.ResourceCount {
		switch {
		case p.counter == nil:
			reportf(p.reporter, SeverityWarning, "Resource counting unavailable")
		default:
			counts, err := p.counter.Count(ctx, tab)
			if err != nil {
				reportf(p.reporter, SeverityError, "Error counting resources: %v", err)
				break
			}
			snap.Resources = &counts
			reportf(p.reporter, SeverityInfo, "Resources: %d total (%d JS, %d CSS, %d images)",
				counts.Total, counts.JS, counts.CSS, counts.Img)
		}
	}
	return snap
}
