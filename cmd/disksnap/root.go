package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "disksnap",
		Short: "Patch-cycle disk snapshot service",
		Long: `Disksnap creates point-in-time snapshots of every Compute Engine disk
in a project and zone, named per patch cycle ({disk}-{month}-{year}-patching).

Run it as an HTTP service (serve) or as a one-shot batch (run).`,
		Version: version,
	}
)

// Execute runs the root command.
func Execute() {
	_ = godotenv.Load() // best-effort
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`disksnap {{.Version}}
`)
}
