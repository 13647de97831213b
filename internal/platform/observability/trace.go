package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "finitefield.org/collectibles-web"

// Tracer returns the named tracer from the global provider. Spans are dropped until a provider
// is registered with otel.SetTracerProvider.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationName + "/" + component)
}

// Meter returns the named meter from the global provider.
func Meter(component string) metric.Meter {
	return otel.Meter(instrumentationName + "/" + component)
}
