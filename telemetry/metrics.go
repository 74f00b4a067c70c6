package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BatchMetrics counts snapshot batch outcomes.
type BatchMetrics struct {
	batches       metric.Int64Counter
	created       metric.Int64Counter
	failed        metric.Int64Counter
	batchDuration metric.Float64Histogram
}

// NewBatchMetrics registers the snapshot batch instruments.
func NewBatchMetrics() (*BatchMetrics, error) {
	meter := otel.Meter("disksnap.snapshot")

	batches, err := meter.Int64Counter(
		"disksnap.batches",
		metric.WithDescription("Number of snapshot batch runs"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return nil, err
	}

	created, err := meter.Int64Counter(
		"disksnap.snapshots.created",
		metric.WithDescription("Number of snapshots created"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	failed, err := meter.Int64Counter(
		"disksnap.snapshots.failed",
		metric.WithDescription("Number of per-disk snapshot failures"),
		metric.WithUnit("{snapshot}"),
	)
	if err != nil {
		return nil, err
	}

	batchDuration, err := meter.Float64Histogram(
		"disksnap.batch.duration",
		metric.WithDescription("Duration of snapshot batch runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BatchMetrics{
		batches:       batches,
		created:       created,
		failed:        failed,
		batchDuration: batchDuration,
	}, nil
}

// RecordBatch records one batch run with its outcome status.
func (m *BatchMetrics) RecordBatch(ctx context.Context, status, project, zone string, durationSeconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("cloud.project", project),
		attribute.String("cloud.zone", zone),
	)
	m.batches.Add(ctx, 1, attrs)
	m.batchDuration.Record(ctx, durationSeconds, metric.WithAttributes(attribute.String("status", status)))
}

// RecordSnapshotCreated counts a successful per-disk snapshot.
func (m *BatchMetrics) RecordSnapshotCreated(ctx context.Context, project, zone string) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cloud.project", project),
		attribute.String("cloud.zone", zone),
	))
}

// RecordSnapshotFailed counts a per-disk snapshot failure.
func (m *BatchMetrics) RecordSnapshotFailed(ctx context.Context, project, zone string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cloud.project", project),
		attribute.String("cloud.zone", zone),
	))
}
