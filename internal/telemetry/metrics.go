package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	ClientTotal   metric.Int64Counter
	EpisodeTotal  metric.Int64Counter
	DocumentTotal metric.Int64Counter
	ExportTotal   metric.Int64Counter
}

// InitMetrics initializes all custom metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/casa-acolhe/records-service")

	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	clientTotal, err := meter.Int64Counter(
		"client_total",
		metric.WithDescription("Total number of client operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	episodeTotal, err := meter.Int64Counter(
		"episode_total",
		metric.WithDescription("Total number of episode operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	documentTotal, err := meter.Int64Counter(
		"document_total",
		metric.WithDescription("Total number of document operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	exportTotal, err := meter.Int64Counter(
		"export_total",
		metric.WithDescription("Total number of CSV exports"),
		metric.WithUnit("{export}"),
	)
	if err != nil {
		return nil, err
	}

	log.Println("✓ Custom metrics initialized")

	return &Metrics{
		HTTPRequestsTotal: httpRequestsTotal,
		HTTPDurationMs:    httpDurationMs,
		ClientTotal:       clientTotal,
		EpisodeTotal:      episodeTotal,
		DocumentTotal:     documentTotal,
		ExportTotal:       exportTotal,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordClientOperation records a client operation metric
func (m *Metrics) RecordClientOperation(ctx context.Context, operation string) {
	m.ClientTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordEpisodeOperation records an episode operation metric
func (m *Metrics) RecordEpisodeOperation(ctx context.Context, operation string) {
	m.EpisodeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordDocumentOperation records a document operation metric
func (m *Metrics) RecordDocumentOperation(ctx context.Context, operation string) {
	m.DocumentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordExport records a CSV export metric
func (m *Metrics) RecordExport(ctx context.Context) {
	m.ExportTotal.Add(ctx, 1)
}
