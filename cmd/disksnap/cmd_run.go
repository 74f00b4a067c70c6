package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patchops/disksnap/config"
	"github.com/patchops/disksnap/gcp"
	"github.com/patchops/disksnap/snapshot"
	"github.com/patchops/disksnap/telemetry"
)

var (
	runProject string
	runZone    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Snapshot all disks in a project/zone once and exit",
	Example: `  disksnap run --project my-proj --zone us-central1-a
  disksnap run --project my-proj --zone europe-west1-b`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runProject, "project", "", "Project holding the disks and snapshots")
	runCmd.Flags().StringVar(&runZone, "zone", "", "Zone to snapshot")
	_ = runCmd.MarkFlagRequired("project")
	_ = runCmd.MarkFlagRequired("zone")
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := telemetry.NewLogger("disksnap", cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := gcp.NewClient(ctx, logger, gcp.WithOperationTimeout(cfg.OperationTimeout))
	if err != nil {
		return fmt.Errorf("creating compute client: %w", err)
	}
	defer func() { _ = client.Close() }()

	batcher := snapshot.NewBatcher(client, logger,
		snapshot.WithStorageLocation(cfg.StorageLocation),
	)

	result, err := batcher.CreateAll(ctx, runProject, runZone)
	if err != nil {
		return fmt.Errorf("snapshot batch: %w", err)
	}

	fmt.Printf("Snapshotted %d/%d disks (%d failed) in %s\n",
		result.Created, result.Disks, result.Failed, result.Duration)
	return nil
}
