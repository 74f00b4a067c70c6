package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/compute/apiv1/computepb"
	"google.golang.org/api/iterator"
)

// ListDisks returns all disks in the given project and scope. Exactly one of
// Scope.Zone / Scope.Region must be set; the matching zonal or regional
// client is used.
func (c *Client) ListDisks(ctx context.Context, project string, scope Scope) ([]*computepb.Disk, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var disks []*computepb.Disk

	if scope.Zone != "" {
		it := c.disks.List(ctx, &computepb.ListDisksRequest{
			Project: project,
			Zone:    scope.Zone,
		})
		for {
			disk, err := it.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("listing disks in %s: %w", scope, err)
			}
			disks = append(disks, disk)
		}
		return disks, nil
	}

	it := c.regionDisks.List(ctx, &computepb.ListRegionDisksRequest{
		Project: project,
		Region:  scope.Region,
	})
	for {
		disk, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing disks in %s: %w", scope, err)
		}
		disks = append(disks, disk)
	}
	return disks, nil
}

func (c *Client) getDisk(ctx context.Context, project, disk string, scope Scope) (*computepb.Disk, error) {
	if scope.Zone != "" {
		return c.disks.Get(ctx, &computepb.GetDiskRequest{
			Project: project,
			Zone:    scope.Zone,
			Disk:    disk,
		})
	}
	return c.regionDisks.Get(ctx, &computepb.GetRegionDiskRequest{
		Project: project,
		Region:  scope.Region,
		Disk:    disk,
	})
}
