package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maxvaer/webrecon/internal/config"
	"github.com/maxvaer/webrecon/internal/events"
	"github.com/maxvaer/webrecon/internal/scanner"
)

// scan is the state of one run. Only the run goroutine touches it.
type scan struct {
	sess   *Session
	cfg    config.ScanConfig
	tab    string
	plan   plan
	result scanner.ScanResult

	total     int
	completed int
}

func newScan(s *Session, cfg config.ScanConfig, tab string) *scan {
	return &scan{
		sess: s,
		cfg:  cfg,
		tab:  tab,
		result: scanner.ScanResult{
			ID:        uuid.New().String(),
			Target:    cfg.URL,
			StartedAt: time.Now(),
		},
	}
}

// execute runs the enabled sub-scans in their fixed order. A returned error
// is an orchestration failure; sub-scan failures are logged and skipped.
func (sc *scan) execute(ctx context.Context) error {
	origin, err := scanner.Origin(sc.cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	sc.result.Target = origin.String()

	req, err := scanner.NewRequester(origin.String(), scanner.RequesterOptions{
		Timeout:         sc.sess.opts.Timeout,
		Proxy:           sc.cfg.Proxy(),
		RandomUserAgent: sc.cfg.Security.RandomUserAgent,
	})
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}

	tab := sc.tab
	if tab == "" {
		tab = sc.cfg.URL
	}

	sc.plan = newPlan(sc.cfg)
	sc.total = sc.plan.totalUnits()
	rep := scanner.ReporterFunc(func(sev scanner.Severity, msg string) { sc.log(ctx, sev, msg) })

	sc.log(ctx, events.SeverityInfo, fmt.Sprintf("Starting scan of %s", sc.result.Target))
	sc.progress(ctx, 0)

	if sc.plan.tech {
		if sc.stopped(ctx) {
			return sc.cancel(ctx)
		}
		sc.log(ctx, events.SeverityInfo, "Detecting website technologies...")
		techs, err := scanner.NewTechDetector(req, rep).Detect(ctx)
		if err != nil {
			sc.log(ctx, events.SeverityError, fmt.Sprintf("Error detecting technologies: %v", err))
		}
		sc.result.Technology = techs
		sc.publish(ctx)
		sc.unitDone(ctx)
	}

	if sc.plan.network {
		if sc.stopped(ctx) {
			return sc.cancel(ctx)
		}
		sc.log(ctx, events.SeverityInfo, "Analyzing network information...")
		snap, err := scanner.NewNetworkAnalyzer(req, rep).Analyze(ctx, sc.cfg.Network)
		if err != nil {
			sc.log(ctx, events.SeverityError, fmt.Sprintf("Error analyzing network: %v", err))
		}
		sc.result.Network = snap
		sc.publish(ctx)
		sc.unitDone(ctx)
	}

	if sc.plan.perf {
		if sc.stopped(ctx) {
			return sc.cancel(ctx)
		}
		sc.log(ctx, events.SeverityInfo, "Running performance tests...")
		sc.result.Performance = scanner.NewPerformanceProber(req, sc.sess.opts.Counter, rep).
			Measure(ctx, sc.cfg.Performance, tab)
		sc.publish(ctx)
		sc.unitDone(ctx)
	}

	throttle := scanner.NewThrottler(sc.sess.opts.PathDelay, sc.sess.opts.AdaptiveThrottle, sc.sess.logger)
	prober := scanner.NewPathProber(req, throttle, rep)
	for _, ps := range sc.plan.pathSets {
		if sc.stopped(ctx) {
			return sc.cancel(ctx)
		}
		sc.log(ctx, events.SeverityInfo, fmt.Sprintf("Scanning for %s paths...", ps.label))
		for f := range prober.Scan(ctx, ps.paths, &sc.sess.stop, func() { sc.unitDone(ctx) }) {
			sc.record(ps.category, f)
			sc.sess.pub.Dispatch(detach(ctx), events.NewFinding(sc.result.ID, sc.result.Target, ps.category, f))
			sc.publish(ctx)
		}
	}

	if sc.plan.stress {
		if sc.stopped(ctx) {
			return sc.cancel(ctx)
		}
		sc.log(ctx, events.SeverityWarning, "Running stress test...")
		sc.result.Stress = &scanner.StressSnapshot{}
		scanner.NewLoadGenerator(req, rep).Run(ctx, sc.cfg.Stress.RequestsPerSecond, sc.cfg.Stress.Duration, &sc.sess.stop,
			func(s scanner.StressSnapshot) {
				*sc.result.Stress = s
				sc.publish(ctx)
			})
		sc.unitDone(ctx)
	}

	if sc.stopped(ctx) {
		return sc.cancel(ctx)
	}

	sc.log(ctx, events.SeveritySuccess, "Scan completed successfully")
	sc.progress(ctx, 100)
	sc.finish(ctx)
	return nil
}

func (sc *scan) record(cat events.Category, f scanner.PathFinding) {
	switch cat {
	case events.CategoryAdmin:
		sc.result.AdminPaths = append(sc.result.AdminPaths, f)
	case events.CategoryVulnerable:
		sc.result.VulnerablePaths = append(sc.result.VulnerablePaths, f)
	case events.CategoryCustom:
		sc.result.CustomPaths = append(sc.result.CustomPaths, f)
	}
}

// stopped is the cooperative checkpoint. Shutdown of ctx counts as a stop.
func (sc *scan) stopped(ctx context.Context) bool {
	return sc.sess.stop.Stopped() || ctx.Err() != nil
}

func (sc *scan) cancel(ctx context.Context) error {
	sc.log(ctx, events.SeverityWarning, "Scan stopped by user")
	sc.result.Stopped = true
	sc.finish(ctx)
	return nil
}

func (sc *scan) fail(ctx context.Context, err error) {
	sc.log(ctx, events.SeverityError, fmt.Sprintf("Error: %v", err))
	sc.result.Error = err.Error()
	sc.finish(ctx)
}

func (sc *scan) finish(ctx context.Context) {
	sc.result.Complete = true
	sc.result.FinishedAt = time.Now()
	sc.publish(ctx)
}

func (sc *scan) unitDone(ctx context.Context) {
	sc.completed++
	if sc.total > 0 {
		sc.progress(ctx, 100*sc.completed/sc.total)
	}
}

func (sc *scan) log(ctx context.Context, sev scanner.Severity, msg string) {
	sc.sess.logger.Debug(msg, "scan_id", sc.result.ID, "severity", sev)
	sc.sess.pub.Dispatch(detach(ctx), events.NewLog(sc.result.ID, sev, msg))
}

func (sc *scan) progress(ctx context.Context, percent int) {
	sc.sess.pub.Dispatch(detach(ctx), events.NewProgress(sc.result.ID, percent))
}

func (sc *scan) publish(ctx context.Context) {
	sc.sess.pub.Dispatch(detach(ctx), events.NewResult(sc.result.Snapshot()))
}

// detach keeps events flowing to observers after a shutdown cancelled ctx,
// so the terminal snapshot is still delivered.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
