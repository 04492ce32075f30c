package tracing

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

// Config selects the span exporter.
type Config struct {
	ServiceName string
	// Exporter is "otlp" or "console".
	Exporter     string
	OTLPEndpoint string
	OTLPProtocol string
	OTLPInsecure bool
	// SampleRatio is the fraction of root spans recorded.
	SampleRatio float64
}

// Setup installs a global tracer provider and tracer. The returned function
// flushes and stops the provider.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = &exporters.ConsoleExporter{}

	if cfg.Exporter == "otlp" {
		otlpCfg := exporters.DefaultOTLPConfig()
		if cfg.OTLPEndpoint != "" {
			otlpCfg.Endpoint = cfg.OTLPEndpoint
		}
		if cfg.OTLPProtocol != "" {
			otlpCfg.Protocol = cfg.OTLPProtocol
		}
		otlpCfg.Insecure = cfg.OTLPInsecure

		otlpExporter, err := exporters.NewOTLPExporter(ctx, otlpCfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create otlp exporter")
		}
		exporter = otlpExporter
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	SetTracer(provider.Tracer(cfg.ServiceName))

	return provider.Shutdown, nil
}
