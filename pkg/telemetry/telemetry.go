// Package telemetry installs the Cloud Trace and Cloud Monitoring
// OpenTelemetry pipelines.
package telemetry

import (
	"context"
	"fmt"
	"time"

	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config selects where telemetry goes.
type Config struct {
	// Project overrides the project associated with Application Default
	// Credentials.
	Project string
	// TraceRatio is the fraction of traces exported.
	TraceRatio float64
}

// Validate checks the trace ratio.
func (c Config) Validate() error {
	if c.TraceRatio < 0 || c.TraceRatio > 1 {
		return fmt.Errorf("trace ratio %v must be in [0, 1]", c.TraceRatio)
	}
	return nil
}

// Install sets the global tracer and meter providers. The returned function
// flushes and stops both pipelines.
func Install(ctx context.Context, cfg Config) (shutdown func(), err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	metricsOpts := []cloudmetrics.Option{}
	traceOpts := []cloudtrace.Option{}
	if cfg.Project != "" {
		metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(cfg.Project))
		traceOpts = append(traceOpts, cloudtrace.WithProjectID(cfg.Project))
	}

	_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.TraceRatio)))
	if err != nil {
		return nil, fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
	}

	pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
	if err != nil {
		traceShutdown()
		return nil, fmt.Errorf("while installing Cloud Metrics OpenTelemetry meter pipeline: %w", err)
	}

	return shutdownFunc(func(ctx context.Context) { pusher.Stop(ctx) }, traceShutdown), nil
}

// flushTimeout bounds the final metrics export on shutdown.
const flushTimeout = 5 * time.Second

// shutdownFunc stops both pipelines. The final flush gets its own context:
// the caller's is usually cancelled by then, after an interrupt.
func shutdownFunc(stopMetrics func(context.Context), stopTraces func()) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		stopMetrics(ctx)
		stopTraces()
	}
}
