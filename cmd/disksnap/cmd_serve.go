package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patchops/disksnap/config"
	"github.com/patchops/disksnap/gcp"
	"github.com/patchops/disksnap/server"
	"github.com/patchops/disksnap/snapshot"
	"github.com/patchops/disksnap/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the snapshot HTTP service",
	Long: `Run the HTTP service. POST /snapshots with {"project": "...", "zone": "..."}
snapshots every disk in that scope. Metrics are exposed on /metrics and
health on /healthz.

Configuration comes from the environment (optionally a .env file):
  DISKSNAP_LISTEN_ADDR                listen address (default :8080)
  DISKSNAP_OPERATION_TIMEOUT          per-operation wait timeout (default 300s)
  DISKSNAP_SNAPSHOT_STORAGE_LOCATION  optional snapshot storage location
  DISKSNAP_LOG_LEVEL, DISKSNAP_LOG_FORMAT`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := telemetry.NewLogger("disksnap", cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := telemetry.InitMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	metrics, err := telemetry.NewBatchMetrics()
	if err != nil {
		return fmt.Errorf("creating batch metrics: %w", err)
	}

	client, err := gcp.NewClient(ctx, logger, gcp.WithOperationTimeout(cfg.OperationTimeout))
	if err != nil {
		return fmt.Errorf("creating compute client: %w", err)
	}
	defer func() { _ = client.Close() }()

	batcher := snapshot.NewBatcher(client, logger,
		snapshot.WithMetrics(metrics),
		snapshot.WithStorageLocation(cfg.StorageLocation),
	)

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Dur("operation_timeout", cfg.OperationTimeout).
		Msg("disksnap starting")

	return server.New(cfg.ListenAddr, batcher, logger).Run(ctx)
}
