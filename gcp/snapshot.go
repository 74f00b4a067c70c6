package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/compute/apiv1/computepb"
	"google.golang.org/protobuf/proto"
)

// SnapshotParams describes a single snapshot creation.
type SnapshotParams struct {
	// Project stores the snapshot.
	Project string
	// DiskName is the source disk.
	DiskName string
	// SnapshotName is the name of the snapshot to create.
	SnapshotName string
	// Scope locates the disk (zonal or regional, exactly one).
	Scope Scope
	// StorageLocation optionally constrains where the snapshot data lives.
	StorageLocation string
	// DiskProject optionally hosts the disk; defaults to Project.
	DiskProject string
}

// CreateSnapshot snapshots a single disk and blocks until the provider
// confirms creation. It returns the fully populated snapshot resource.
func (c *Client) CreateSnapshot(ctx context.Context, params SnapshotParams) (*computepb.Snapshot, error) {
	if err := params.Scope.Validate(); err != nil {
		return nil, err
	}

	diskProject := params.DiskProject
	if diskProject == "" {
		diskProject = params.Project
	}

	disk, err := c.getDisk(ctx, diskProject, params.DiskName, params.Scope)
	if err != nil {
		return nil, fmt.Errorf("fetching disk %q: %w", params.DiskName, err)
	}

	snap := &computepb.Snapshot{
		Name:       proto.String(params.SnapshotName),
		SourceDisk: proto.String(disk.GetSelfLink()),
	}
	if params.StorageLocation != "" {
		snap.StorageLocations = []string{params.StorageLocation}
	}

	op, err := c.snapshots.Insert(ctx, &computepb.InsertSnapshotRequest{
		Project:          params.Project,
		SnapshotResource: snap,
	})
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot %q: %w", params.SnapshotName, err)
	}

	verboseName := fmt.Sprintf("snapshot creation for %s", params.DiskName)
	if err := waitForOperation(ctx, c.logger, op, verboseName, c.operationTimeout); err != nil {
		return nil, err
	}

	return c.snapshots.Get(ctx, &computepb.GetSnapshotRequest{
		Project:  params.Project,
		Snapshot: params.SnapshotName,
	})
}
