package metrics

import (
	"context"
)

// Custom type to represent a metric name,
// providing a type-safe way to handle metric names.
type MetricName string

const (
	ConvertRequestReceived MetricName = "conversion.request.received"
	PurgeRequestReceived   MetricName = "downloads.purge.request.received"
	FileConverted          MetricName = "conversion.file.converted"
	ConversionFailed       MetricName = "conversion.file.failed"
	PreviewGenerated       MetricName = "preview.generated"
)

type MetricsSvc interface {
	Increment(metric MetricName, attrs map[string]string)
	Shutdown(ctx context.Context) error
}
