package telemetry

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("stackgraphs.stitcher")

// InitProvider installs a real SDK TracerProvider as the global tracer, so
// that StartRun's spans are exported instead of discarded by the default
// no-op provider. w receives one JSON span record per line; callers
// typically pass os.Stderr so span output does not interleave with a
// command's own stdout payload (e.g. stackgraphctl visualize's graph
// JSON). The returned shutdown func flushes pending spans and must be
// called before the process exits.
func InitProvider(serviceName string, w io.Writer) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceNameKey.String(serviceName),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	// otel.SetTracerProvider retroactively upgrades every Tracer already
	// obtained via otel.Tracer (including the package-level tracer above):
	// the global default is a delegating proxy until a real provider is
	// installed, so StartRun's spans start exporting without re-fetching it.
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// StartRun opens a span covering one stitcher run, tagged with a
// correlation ID (SPEC_FULL.md §11; see stitcher.NewRunID). Callers must
// call the returned function exactly once when the run finishes,
// regardless of outcome.
func StartRun(ctx context.Context, runID string, seedCount int) (context.Context, func(cancelled bool, partialPaths int)) {
	ctx, span := tracer.Start(ctx, "stitcher.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("seed_count", seedCount),
		),
	)
	return ctx, func(cancelled bool, partialPaths int) {
		span.SetAttributes(
			attribute.Bool("cancelled", cancelled),
			attribute.Int("partial_paths_produced", partialPaths),
		)
		span.End()
	}
}
