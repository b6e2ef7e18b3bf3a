// Package telemetry exports scans as OpenTelemetry traces. Each scan is one
// root span; log lines and findings become span events.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/maxvaer/webrecon/internal/events"
)

var _ events.Hook = (*Hook)(nil)

const tracerName = "github.com/maxvaer/webrecon"

// Options configures the OTLP exporter.
type Options struct {
	// Endpoint is the OTLP/gRPC collector address (default "localhost:4317").
	Endpoint string

	// ServiceName is reported as service.name (default "webrecon").
	ServiceName string

	// ServiceVersion is reported as service.version.
	ServiceVersion string

	// Insecure disables TLS towards the collector.
	Insecure bool

	ShutdownTimeout   time.Duration // default 5s
	ConnectionTimeout time.Duration // default 10s
}

// Hook turns scan events into spans.
type Hook struct {
	provider        *sdktrace.TracerProvider
	tracer          trace.Tracer
	shutdownTimeout time.Duration

	mu     sync.Mutex
	spans  map[string]trace.Span
	closed bool
}

// New creates a hook exporting to an OTLP/gRPC collector. The exporter
// connects lazily, so an unreachable collector never blocks a scan.
func New(opts Options) (*Hook, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "webrecon"
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = 10 * time.Second
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithTimeout(opts.ConnectionTimeout),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
	defer cancel()
	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return NewWithProvider(provider, opts.ShutdownTimeout), nil
}

// NewWithProvider creates a hook on an existing tracer provider. The hook
// shuts the provider down on Close.
func NewWithProvider(provider *sdktrace.TracerProvider, shutdownTimeout time.Duration) *Hook {
	if shutdownTimeout == 0 {
		shutdownTimeout = 5 * time.Second
	}
	return &Hook{
		provider:        provider,
		tracer:          provider.Tracer(tracerName),
		shutdownTimeout: shutdownTimeout,
		spans:           make(map[string]trace.Span),
	}
}

// EventTypes implements events.Hook.
func (h *Hook) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeLog, events.EventTypeFinding, events.EventTypeResult}
}

// OnEvent implements events.Hook.
func (h *Hook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	span := h.span(ctx, event)

	switch e := event.(type) {
	case *events.LogEvent:
		span.AddEvent("log", trace.WithTimestamp(e.Time), trace.WithAttributes(
			attribute.String("severity", string(e.Severity)),
			attribute.String("message", e.Message),
		))
		if e.Severity == events.SeverityError {
			span.SetStatus(codes.Error, e.Message)
		}
	case *events.FindingEvent:
		span.SetAttributes(attribute.String("webrecon.target", e.Target))
		span.AddEvent("path_found", trace.WithTimestamp(e.Time), trace.WithAttributes(
			attribute.String("category", string(e.Category)),
			attribute.String("path", e.Finding.Path),
			attribute.String("url", e.Finding.URL),
			attribute.Int("status_code", e.Finding.StatusCode),
		))
	case *events.ResultEvent:
		if e.Terminal() {
			h.finish(span, e)
		}
	}
	return nil
}

// span returns the root span of the event's scan, starting it on the
// first event seen.
func (h *Hook) span(ctx context.Context, event events.Event) trace.Span {
	if s, ok := h.spans[event.ScanID()]; ok {
		return s
	}
	_, s := h.tracer.Start(context.WithoutCancel(ctx), "webrecon.scan",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(event.Timestamp()),
		trace.WithAttributes(attribute.String("webrecon.scan_id", event.ScanID())),
	)
	h.spans[event.ScanID()] = s
	return s
}

func (h *Hook) finish(span trace.Span, e *events.ResultEvent) {
	r := &e.Result
	span.SetAttributes(
		attribute.String("webrecon.target", r.Target),
		attribute.Int("webrecon.findings", r.Findings()),
		attribute.StringSlice("webrecon.technologies", r.Technology),
		attribute.Bool("webrecon.stopped", r.Stopped),
	)
	if r.Stress != nil {
		span.SetAttributes(
			attribute.Int("webrecon.stress.sent", r.Stress.RequestsSent),
			attribute.Int("webrecon.stress.failed", r.Stress.Failed),
			attribute.Int64("webrecon.stress.average_ms", r.Stress.AverageTimeMs),
		)
	}

	if r.Error != "" {
		span.SetStatus(codes.Error, r.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	end := e.Time
	if !r.FinishedAt.IsZero() {
		end = r.FinishedAt
	}
	span.End(trace.WithTimestamp(end))
	delete(h.spans, r.ID)
}

// Close ends any open span and flushes the provider.
func (h *Hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for id, s := range h.spans {
		s.SetStatus(codes.Error, "scan did not finish")
		s.End()
		delete(h.spans, id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}
