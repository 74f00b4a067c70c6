package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/compute/apiv1/computepb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/patchops/disksnap/gcp"
)

// fakeCompute implements Compute for batcher tests.
type fakeCompute struct {
	disks   []*computepb.Disk
	listErr error

	createErrs map[string]error // disk name -> injected error
	created    []gcp.SnapshotParams
}

func (f *fakeCompute) ListDisks(ctx context.Context, project string, scope gcp.Scope) ([]*computepb.Disk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.disks, nil
}

func (f *fakeCompute) CreateSnapshot(ctx context.Context, params gcp.SnapshotParams) (*computepb.Snapshot, error) {
	f.created = append(f.created, params)
	if err, ok := f.createErrs[params.DiskName]; ok {
		return nil, err
	}
	return &computepb.Snapshot{Name: proto.String(params.SnapshotName)}, nil
}

func disk(name string) *computepb.Disk {
	return &computepb.Disk{Name: proto.String(name)}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestName(t *testing.T) {
	march := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "boot-disk-march-2024-patching", Name("boot-disk", march))

	december := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "data-december-2025-patching", Name("data", december))
}

func TestCreateAll_SnapshotsEveryDisk(t *testing.T) {
	compute := &fakeCompute{disks: []*computepb.Disk{disk("d1"), disk("d2")}}
	b := NewBatcher(compute, zerolog.Nop(),
		WithNowFunc(fixedClock(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))))

	result, err := b.CreateAll(context.Background(), "proj", "us-central1-a")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Disks)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, compute.created, 2)
	assert.Equal(t, "d1-march-2024-patching", compute.created[0].SnapshotName)
	assert.Equal(t, "d2-march-2024-patching", compute.created[1].SnapshotName)
	assert.Equal(t, gcp.Scope{Zone: "us-central1-a"}, compute.created[0].Scope)
	assert.Equal(t, "proj", compute.created[0].Project)
}

func TestCreateAll_PerDiskFailureDoesNotAbortBatch(t *testing.T) {
	compute := &fakeCompute{
		disks:      []*computepb.Disk{disk("d1"), disk("d2")},
		createErrs: map[string]error{"d1": errors.New("quota exceeded")},
	}
	b := NewBatcher(compute, zerolog.Nop())

	result, err := b.CreateAll(context.Background(), "proj", "us-central1-a")
	require.NoError(t, err, "per-disk failures must not surface as batch errors")

	// d2 was still attempted after d1 failed.
	require.Len(t, compute.created, 2)
	assert.Equal(t, "d1", compute.created[0].DiskName)
	assert.Equal(t, "d2", compute.created[1].DiskName)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Failed)
}

func TestCreateAll_ListingFailureIsBatchLevel(t *testing.T) {
	listErr := errors.New("permission denied")
	compute := &fakeCompute{listErr: listErr}
	b := NewBatcher(compute, zerolog.Nop())

	_, err := b.CreateAll(context.Background(), "proj", "us-central1-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, listErr)
	assert.Empty(t, compute.created)
}

func TestCreateAll_EmptyZoneHasNoDisks(t *testing.T) {
	compute := &fakeCompute{}
	b := NewBatcher(compute, zerolog.Nop())

	result, err := b.CreateAll(context.Background(), "proj", "us-central1-a")
	require.NoError(t, err)
	assert.Equal(t, Result{Duration: result.Duration}, result)
}

func TestCreateAll_StorageLocationForwarded(t *testing.T) {
	compute := &fakeCompute{disks: []*computepb.Disk{disk("d1")}}
	b := NewBatcher(compute, zerolog.Nop(), WithStorageLocation("eu"))

	_, err := b.CreateAll(context.Background(), "proj", "europe-west1-b")
	require.NoError(t, err)

	require.Len(t, compute.created, 1)
	assert.Equal(t, "eu", compute.created[0].StorageLocation)
}
