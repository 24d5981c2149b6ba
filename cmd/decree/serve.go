package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/decree-tools/decree/internal/server"
	"github.com/decree-tools/decree/internal/updater"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Starts the MCP server over stdio, exposing the gov_* tools to any MCP
host (Claude Code, Cursor, VS Code Copilot, and the rest). The server
resolves the governed project from its working directory, so configure
the host to launch decree inside the repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := server.New(log)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			// Best-effort version notice on stderr, never touching the
			// stdio transport on stdout.
			go notifyUpdates()

			return mcpserver.ServeStdio(s)
		},
	}
}

func notifyUpdates() {
	result := updater.CheckVersion(server.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"update available: v%s -> v%s (run: decree update)\n",
			result.CurrentVersion, result.LatestVersion)
	}
}
