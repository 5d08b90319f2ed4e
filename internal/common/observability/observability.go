package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Options controls which exporters are enabled.
type Options struct {
	JaegerEndpoint string
}

// Observability bundles the OpenTelemetry meter and tracer used by the
// lifecycle loop. A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	unitCounter    otelmetric.Int64Counter
	unitDuration   otelmetric.Float64Histogram
}

func New(serviceName string, opts Options) *Observability {
	o := &Observability{tracer: otel.Tracer(serviceName)}

	if opts.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			o.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
			otel.SetTracerProvider(o.tracerProvider)
			o.tracer = o.tracerProvider.Tracer(serviceName)
		}
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(o.meterProvider)

	meter := o.meterProvider.Meter(serviceName)

	o.unitCounter, _ = meter.Int64Counter(
		"lifecycle.units.processed",
		otelmetric.WithDescription("Number of units of work applied by the lifecycle loop"),
	)

	o.unitDuration, _ = meter.Float64Histogram(
		"lifecycle.units.duration",
		otelmetric.WithDescription("Time to reduce and dispatch one unit of work"),
		otelmetric.WithUnit("ms"),
	)

	return o
}

// StartSpan opens a span for one unit of work.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordUnit records one processed unit of the given kind.
func (o *Observability) RecordUnit(ctx context.Context, kind string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("kind", kind))
	if o.unitCounter != nil {
		o.unitCounter.Add(ctx, 1, attrs)
	}
	if o.unitDuration != nil {
		o.unitDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
