// Package tools implements the MCP tool handlers for decree.
//
// Each file holds one tool. A tool receives its dependencies through its
// struct and exposes a Definition for registration plus a Handle method
// compatible with mcp-go's CallToolRequest signature. Tools share a nil-
// safe history store: a nil store means history is disabled and every
// tool still works.
package tools

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
)

// resolveProject locates the governed project from the server's working
// directory and loads its manifest. MCP clients usually launch the server
// somewhere inside the repository, so the walk-up search covers the
// common case of a deep subdirectory.
func resolveProject() (string, *manifest.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("getting working directory: %w", err)
	}
	return manifest.LoadAt(cwd)
}

// recordRun persists a report when history is enabled. Recording is
// best-effort: a storage failure never fails the tool call.
func recordRun(store *history.Store, rep *report.Report, target string) {
	if store == nil {
		return
	}
	_, _ = store.RecordRun(rep, target)
}

// intArg extracts a numeric argument from a tool request. JSON numbers
// arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
