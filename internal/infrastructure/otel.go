package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"healthplots/internal/config"
)

const (
	ServiceName = config.AppName
	TracerName  = "healthplots/pipeline"
)

// OTelProviders holds the OpenTelemetry providers used by a run.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Stages         *StageMetrics

	traceOut io.Closer
	logger   *slog.Logger
}

// InitializeOTel sets up tracing and metrics. Spans go to traceFile when the
// stdout exporter is selected (stderr when traceFile is empty); OTel metrics
// are exposed through reg so they share the prometheus textfile and /metrics
// endpoint with the client_golang collectors.
func InitializeOTel(cfg config.TelemetryConfig, traceFile string, reg prometheus.Registerer, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	p := &OTelProviders{logger: logger}

	if err := p.initTracing(cfg, traceFile, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.EnableMetrics && reg != nil {
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		p.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		p.Meter = p.MeterProvider.Meter(TracerName, metric.WithInstrumentationVersion(config.AppVersion))
	} else {
		p.Meter = otel.GetMeterProvider().Meter(TracerName)
	}

	var err error
	p.Stages, err = NewStageMetrics(p.Meter)
	if err != nil {
		return nil, err
	}

	logger.Debug("OpenTelemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", p.MeterProvider != nil))
	return p, nil
}

func (p *OTelProviders) initTracing(cfg config.TelemetryConfig, traceFile string, res *resource.Resource) error {
	switch cfg.TraceExporter {
	case "", "none":
		p.Tracer = otel.GetTracerProvider().Tracer(TracerName)
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	var out io.Writer = os.Stderr
	if traceFile != "" {
		if err := os.MkdirAll(filepath.Dir(traceFile), 0755); err != nil {
			return err
		}
		f, err := os.Create(traceFile)
		if err != nil {
			return err
		}
		p.traceOut = f
		out = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	p.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)
	p.Tracer = p.TracerProvider.Tracer(TracerName, trace.WithInstrumentationVersion(config.AppVersion))
	return nil
}

// Shutdown flushes and closes the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if p.traceOut != nil {
		if err := p.traceOut.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// StageMetrics records pipeline stage timings as OTel instruments.
type StageMetrics struct {
	Duration metric.Float64Histogram
	Failures metric.Int64Counter
}

// NewStageMetrics creates the stage instruments on meter.
func NewStageMetrics(meter metric.Meter) (*StageMetrics, error) {
	duration, err := meter.Float64Histogram(
		"pipeline_stage_duration",
		metric.WithDescription("Pipeline stage duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"pipeline_stage_failures",
		metric.WithDescription("Number of failed pipeline stages"),
	)
	if err != nil {
		return nil, err
	}

	return &StageMetrics{Duration: duration, Failures: failures}, nil
}

// StartStage opens a span named after the stage. The returned function ends
// the span, recording err on it and on the stage instruments.
func (p *OTelProviders) StartStage(ctx context.Context, stage string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := p.Tracer.Start(ctx, stage, trace.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("trace_id", GetTraceID(ctx)),
	))

	return ctx, func(err error) {
		attrs := metric.WithAttributes(attribute.String("stage", stage))
		p.Stages.Duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil {
			p.Stages.Failures.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// TraceIDFromContext extracts the OTel trace ID from the active span
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
