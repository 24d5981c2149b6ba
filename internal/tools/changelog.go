package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/changelog"
)

// ChangelogTool handles the gov_changelog MCP tool.
// It renders the project's commit history as a grouped changelog.
type ChangelogTool struct{}

// NewChangelogTool creates a ChangelogTool.
func NewChangelogTool() *ChangelogTool {
	return &ChangelogTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *ChangelogTool) Definition() mcp.Tool {
	return mcp.NewTool("gov_changelog",
		mcp.WithDescription(
			"Render a changelog from the project's git history. Commits are "+
				"grouped by type in the order the manifest configures, with "+
				"unparseable or unconfigured commits collected under Other. "+
				"Output is deterministic markdown.",
		),
		mcp.WithString("since",
			mcp.Description("Git ref to start from (exclusive), e.g. 'v1.2.0'. Empty renders full history."),
		),
	)
}

// Handle processes the gov_changelog tool call.
func (t *ChangelogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since := req.GetString("since", "")

	root, m, err := resolveProject()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	commits, err := changelog.ReadLog(root, since)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(changelog.Render(m.Changelog, since, commits)), nil
}
