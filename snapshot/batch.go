package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/compute/apiv1/computepb"
	"github.com/rs/zerolog"

	"github.com/patchops/disksnap/gcp"
	"github.com/patchops/disksnap/telemetry"
)

// DiskLister lists disks in a project scope.
type DiskLister interface {
	ListDisks(ctx context.Context, project string, scope gcp.Scope) ([]*computepb.Disk, error)
}

// SnapshotCreator creates one snapshot and blocks until it exists.
type SnapshotCreator interface {
	CreateSnapshot(ctx context.Context, params gcp.SnapshotParams) (*computepb.Snapshot, error)
}

// Compute is the provider surface the batcher needs; *gcp.Client implements it.
type Compute interface {
	DiskLister
	SnapshotCreator
}

// Result summarizes one batch run. Per-disk failures are counted here and in
// metrics but deliberately do not surface to the HTTP caller.
type Result struct {
	Disks    int
	Created  int
	Failed   int
	Duration time.Duration
}

// Batcher snapshots every disk in a project/zone with a patch-cycle name.
type Batcher struct {
	compute         Compute
	logger          zerolog.Logger
	metrics         *telemetry.BatchMetrics
	storageLocation string
	now             func() time.Time
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithStorageLocation constrains where snapshot data is stored.
func WithStorageLocation(location string) Option {
	return func(b *Batcher) { b.storageLocation = location }
}

// WithMetrics attaches batch metrics.
func WithMetrics(m *telemetry.BatchMetrics) Option {
	return func(b *Batcher) { b.metrics = m }
}

// WithNowFunc overrides the clock used for snapshot naming.
func WithNowFunc(now func() time.Time) Option {
	return func(b *Batcher) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBatcher creates a batch orchestrator.
func NewBatcher(compute Compute, logger zerolog.Logger, opts ...Option) *Batcher {
	b := &Batcher{
		compute: compute,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name derives the patch-cycle snapshot name for a disk: the disk name plus
// the lowercase month, four-digit year and a fixed "-patching" suffix. Two
// runs in the same month collide on purpose; the provider rejects the
// duplicate and the collision shows up as a per-disk failure.
func Name(disk string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%d-patching", disk, strings.ToLower(t.Month().String()), t.Year())
}

// CreateAll snapshots every disk in the given project and zone. A disk's
// failure is logged and counted but never stops the remaining disks; only a
// batch-level failure (the disk listing itself) returns an error.
func (b *Batcher) CreateAll(ctx context.Context, project, zone string) (Result, error) {
	start := time.Now()
	// One clock read names the whole batch consistently.
	now := b.now()
	scope := gcp.Scope{Zone: zone}

	disks, err := b.compute.ListDisks(ctx, project, scope)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("project", project).
			Str("zone", zone).
			Msg("disk listing failed")
		b.metrics.RecordBatch(ctx, "error", project, zone, time.Since(start).Seconds())
		return Result{}, fmt.Errorf("listing disks: %w", err)
	}

	result := Result{Disks: len(disks)}

	b.logger.Info().
		Str("project", project).
		Str("zone", zone).
		Int("disks", len(disks)).
		Msg("starting snapshot batch")

	for _, disk := range disks {
		name := Name(disk.GetName(), now)

		_, err := b.compute.CreateSnapshot(ctx, gcp.SnapshotParams{
			Project:         project,
			DiskName:        disk.GetName(),
			SnapshotName:    name,
			Scope:           scope,
			StorageLocation: b.storageLocation,
		})
		if err != nil {
			// Isolate the failure; the rest of the batch continues.
			result.Failed++
			b.logger.Error().
				Err(err).
				Str("disk", disk.GetName()).
				Str("snapshot", name).
				Msg("snapshot creation failed")
			b.metrics.RecordSnapshotFailed(ctx, project, zone)
			continue
		}

		result.Created++
		b.logger.Info().
			Str("disk", disk.GetName()).
			Str("snapshot", name).
			Msg("snapshot created")
		b.metrics.RecordSnapshotCreated(ctx, project, zone)
	}

	result.Duration = time.Since(start)

	b.logger.Info().
		Str("project", project).
		Str("zone", zone).
		Int("disks", result.Disks).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("snapshot batch complete")
	b.metrics.RecordBatch(ctx, "ok", project, zone, result.Duration.Seconds())

	return result, nil
}
