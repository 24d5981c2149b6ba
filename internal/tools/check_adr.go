package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/rules"
)

// CheckADRTool handles the gov_check_adr MCP tool.
// It validates every ADR in the project against the resolved rule set.
type CheckADRTool struct {
	store *history.Store
}

// NewCheckADRTool creates a CheckADRTool. store may be nil.
func NewCheckADRTool(store *history.Store) *CheckADRTool {
	return &CheckADRTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckADRTool) Definition() mcp.Tool {
	return mcp.NewTool("gov_check_adr",
		mcp.WithDescription(
			"Validate every Architecture Decision Record in the project. "+
				"Checks filename patterns, required frontmatter fields, "+
				"allowed field values, tag vocabulary, and required sections "+
				"against the project's rule sets. Returns a grouped violation "+
				"report with a PASS or FAIL verdict.",
		),
	)
}

// Handle processes the gov_check_adr tool call.
func (t *CheckADRTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, m, err := resolveProject()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := rules.CheckArtifacts(root, m, rules.ADRType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	recordRun(t.store, rep, root)
	return mcp.NewToolResultText(rep.Render()), nil
}
