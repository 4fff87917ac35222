package opentelemetry

import (
	"context"
	"github.com/cirruslabs/etagd/internal/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"os"
	"time"
)

const instrumentationName = "github.com/cirruslabs/etagd"

const shutdownTimeout = 5 * time.Second

// DefaultMeter delegates to whatever meter provider Init installs.
//
//nolint:gochecknoglobals
var DefaultMeter = otel.Meter(instrumentationName)

// Init installs the global meter provider. Metrics are exported over OTLP/HTTP
// only when OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT
// is set, the rest of the exporter is configured through the standard
// OTEL_EXPORTER_OTLP_* variables.
func Init(ctx context.Context) (metric.MeterProvider, func(), error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName("etagd"),
			semconv.ServiceVersion(version.FullVersion),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}

	if exporterConfigured() {
		exporter, err := otlpmetrichttp.New(ctx)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	meterProvider := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(meterProvider)

	deinit := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Flushes the metrics that were not exported yet
		if err := meterProvider.Shutdown(ctx); err != nil {
			zap.S().Warnf("failed to shut down OpenTelemetry meter provider: %v", err)
		}
	}

	return meterProvider, deinit, nil
}

func exporterConfigured() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" ||
		os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT") != ""
}
