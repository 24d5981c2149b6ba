// Package resources implements MCP resource handlers for decree.
//
// Resources provide read-only data the host can consume for context.
// They use URI-based addressing (decree://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/manifest"
)

// Handler manages decree resource endpoints.
type Handler struct {
	store *history.Store
}

// NewHandler creates a resource Handler. store may be nil when history
// is disabled.
func NewHandler(store *history.Store) *Handler {
	return &Handler{store: store}
}

// status is the JSON payload served by the status resource.
type status struct {
	Root      string         `json:"root"`
	Project   string         `json:"project"`
	Artifacts []string       `json:"artifacts"`
	History   *history.Stats `json:"history,omitempty"`
}

// StatusResource returns the MCP resource definition for project status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"decree://project/status",
		"Governance Project Status",
		mcp.WithResourceDescription("The governed project's manifest summary and run history statistics"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current project status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	root, m, err := manifest.LoadAt(cwd)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	st := status{
		Root:      root,
		Project:   m.Project.Name,
		Artifacts: m.Config.Artifacts,
	}
	if h.store != nil {
		if stats, err := h.store.Stats(); err == nil {
			st.History = &stats
		}
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
