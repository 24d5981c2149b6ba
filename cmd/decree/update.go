package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decree-tools/decree/internal/server"
	"github.com/decree-tools/decree/internal/updater"
)

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Self-update to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := updater.CheckVersion(server.Version)
			if !result.UpdateAvailable {
				fmt.Printf("already at the latest version (v%s)\n", result.CurrentVersion)
				return nil
			}

			fmt.Printf("updating v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
			if err := updater.SelfUpdate(server.Version); err != nil {
				return fmt.Errorf("update failed: %w (download manually from %s)", err, result.ReleaseURL)
			}

			fmt.Printf("updated to v%s\n", result.LatestVersion)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the decree version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("decree v%s\n", server.Version)
		},
	}
}
