package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/rules"
)

// CheckEvidenceTool handles the gov_check_evidence MCP tool.
// It validates evidence artifacts, including their ADR cross-references.
type CheckEvidenceTool struct {
	store *history.Store
}

// NewCheckEvidenceTool creates a CheckEvidenceTool. store may be nil.
func NewCheckEvidenceTool(store *history.Store) *CheckEvidenceTool {
	return &CheckEvidenceTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckEvidenceTool) Definition() mcp.Tool {
	return mcp.NewTool("gov_check_evidence",
		mcp.WithDescription(
			"Validate every evidence artifact in the project. "+
				"Runs the same structural checks as ADR validation, plus a "+
				"cross-reference pass: each evidence document's 'adr' field "+
				"must point at an ADR id that actually exists. Returns a "+
				"grouped violation report with a PASS or FAIL verdict.",
		),
	)
}

// Handle processes the gov_check_evidence tool call.
func (t *CheckEvidenceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, m, err := resolveProject()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := rules.CheckArtifacts(root, m, rules.EvidenceType)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	recordRun(t.store, rep, root)
	return mcp.NewToolResultText(rep.Render()), nil
}
