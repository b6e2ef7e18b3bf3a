// Package metrics exposes scan activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxvaer/webrecon/internal/events"
)

var _ events.Hook = (*Hook)(nil)

const shutdownTimeout = 5 * time.Second

// Options configures the metrics hook.
type Options struct {
	// Addr is the listen address of the metrics server, e.g. ":9090".
	// Empty disables the server; the registry is still updated.
	Addr string

	// Path of the metrics endpoint (default "/metrics").
	Path string

	Logger *slog.Logger
}

// Hook updates Prometheus metrics from scan events. Metrics live in a
// private registry.
type Hook struct {
	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger

	findings     *prometheus.CounterVec
	logs         *prometheus.CounterVec
	progress     *prometheus.GaugeVec
	technologies *prometheus.GaugeVec
	stress       *prometheus.GaugeVec
	duration     *prometheus.GaugeVec
	scans        *prometheus.CounterVec

	mu     sync.Mutex
	closed bool
}

// New creates the hook and, if opts.Addr is set, starts serving metrics.
func New(opts Options) (*Hook, error) {
	if opts.Path == "" {
		opts.Path = "/metrics"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &Hook{registry: prometheus.NewRegistry(), logger: opts.Logger}
	if err := h.initMetrics(); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	if opts.Addr != "" {
		if err := h.startServer(opts.Addr, opts.Path); err != nil {
			return nil, fmt.Errorf("starting metrics server: %w", err)
		}
	}
	return h, nil
}

func (h *Hook) initMetrics() error {
	h.findings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webrecon_findings_total",
		Help: "Paths found, by target and candidate list",
	}, []string{"target", "category"})

	h.logs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webrecon_log_events_total",
		Help: "Log events emitted, by severity",
	}, []string{"severity"})

	h.progress = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webrecon_scan_progress_percent",
		Help: "Completion percentage of the current scan",
	}, []string{"scan_id"})

	h.technologies = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webrecon_technologies_detected",
		Help: "Technologies detected on the target",
	}, []string{"target"})

	h.stress = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webrecon_stress_requests",
		Help: "Cumulative stress test requests, by outcome",
	}, []string{"target", "outcome"})

	h.duration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "webrecon_scan_duration_seconds",
		Help: "Duration of the last finished scan",
	}, []string{"target"})

	h.scans = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webrecon_scans_total",
		Help: "Finished scans, by outcome",
	}, []string{"outcome"})

	for _, c := range []prometheus.Collector{h.findings, h.logs, h.progress, h.technologies, h.stress, h.duration, h.scans} {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hook) startServer(addr, path string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	h.listener = ln
	h.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Warn("metrics server stopped", "error", err)
		}
	}()
	return nil
}

// Registry returns the registry the metrics are registered in.
func (h *Hook) Registry() *prometheus.Registry { return h.registry }

// Addr returns the address the metrics server listens on, or "" when no
// server runs.
func (h *Hook) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// EventTypes implements events.Hook.
func (h *Hook) EventTypes() []events.EventType { return nil }

// OnEvent implements events.Hook.
func (h *Hook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.LogEvent:
		h.logs.WithLabelValues(string(e.Severity)).Inc()
	case *events.ProgressEvent:
		h.progress.WithLabelValues(e.ScanID()).Set(float64(e.Percent))
	case *events.FindingEvent:
		h.findings.WithLabelValues(hostLabel(e.Target), string(e.Category)).Inc()
	case *events.ResultEvent:
		h.handleResult(e)
	}
	return nil
}

func (h *Hook) handleResult(e *events.ResultEvent) {
	r := &e.Result
	target := hostLabel(r.Target)

	h.technologies.WithLabelValues(target).Set(float64(len(r.Technology)))
	if r.Stress != nil {
		h.stress.WithLabelValues(target, "sent").Set(float64(r.Stress.RequestsSent))
		h.stress.WithLabelValues(target, "successful").Set(float64(r.Stress.Successful))
		h.stress.WithLabelValues(target, "failed").Set(float64(r.Stress.Failed))
	}

	if !e.Terminal() {
		return
	}
	h.duration.WithLabelValues(target).Set(r.Elapsed().Seconds())
	h.progress.DeleteLabelValues(r.ID)

	outcome := "completed"
	switch {
	case r.Error != "":
		outcome = "failed"
	case r.Stopped:
		outcome = "stopped"
	}
	h.scans.WithLabelValues(outcome).Inc()
}

// Close shuts the metrics server down.
func (h *Hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.server.Shutdown(ctx)
}

// hostLabel reduces a target URL to its host for use as a label value.
func hostLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
