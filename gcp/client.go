package gcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	compute "cloud.google.com/go/compute/apiv1"
	"github.com/rs/zerolog"
)

// ErrScopeRequired is returned when neither zone nor region is given to a
// scoped operation.
var ErrScopeRequired = errors.New("either zone or region must be provided")

// ErrScopeConflict is returned when both zone and region are given.
var ErrScopeConflict = errors.New("zone and region are mutually exclusive")

// Scope addresses disks either zonally or regionally. Exactly one field must
// be set.
type Scope struct {
	Zone   string
	Region string
}

// Validate checks the zone/region exclusivity rule.
func (s Scope) Validate() error {
	switch {
	case s.Zone == "" && s.Region == "":
		return ErrScopeRequired
	case s.Zone != "" && s.Region != "":
		return ErrScopeConflict
	}
	return nil
}

func (s Scope) String() string {
	if s.Zone != "" {
		return "zone " + s.Zone
	}
	return "region " + s.Region
}

// Client wraps the Compute Engine clients used by the snapshot service.
type Client struct {
	disks       *compute.DisksClient
	regionDisks *compute.RegionDisksClient
	snapshots   *compute.SnapshotsClient

	logger           zerolog.Logger
	operationTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithOperationTimeout overrides the default wait timeout for long-running
// operations.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.operationTimeout = d
		}
	}
}

// NewClient builds the compute clients using ambient credentials
// (Application Default Credentials).
func NewClient(ctx context.Context, logger zerolog.Logger, opts ...Option) (*Client, error) {
	disks, err := compute.NewDisksRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating disks client: %w", err)
	}

	regionDisks, err := compute.NewRegionDisksRESTClient(ctx)
	if err != nil {
		_ = disks.Close()
		return nil, fmt.Errorf("creating region disks client: %w", err)
	}

	snapshots, err := compute.NewSnapshotsRESTClient(ctx)
	if err != nil {
		_ = disks.Close()
		_ = regionDisks.Close()
		return nil, fmt.Errorf("creating snapshots client: %w", err)
	}

	c := &Client{
		disks:            disks,
		regionDisks:      regionDisks,
		snapshots:        snapshots,
		logger:           logger,
		operationTimeout: DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases all underlying clients.
func (c *Client) Close() error {
	var errs []error
	if err := c.disks.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.regionDisks.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.snapshots.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
