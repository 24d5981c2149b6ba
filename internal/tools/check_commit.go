package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/commitmsg"
	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/manifest"
)

// CheckCommitTool handles the gov_check_commit MCP tool.
// It validates a commit message against the project's commit contract.
type CheckCommitTool struct {
	store *history.Store
}

// NewCheckCommitTool creates a CheckCommitTool. store may be nil.
func NewCheckCommitTool(store *history.Store) *CheckCommitTool {
	return &CheckCommitTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckCommitTool) Definition() mcp.Tool {
	return mcp.NewTool("gov_check_commit",
		mcp.WithDescription(
			"Validate a commit message against the project's commit contract: "+
				"a 'type(scope): summary' subject with an allowed type, a body "+
				"of dash bullets, and a Refs trailer when the type requires one. "+
				"Useful before committing, or for reviewing a proposed message. "+
				"Returns the violation report with a PASS or FAIL verdict.",
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The full commit message to validate, subject line first."),
		),
	)
}

// Handle processes the gov_check_commit tool call.
func (t *CheckCommitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := req.GetString("message", "")
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("'message' is required: provide the commit message to validate"), nil
	}

	root, m, err := resolveProject()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	crules, err := manifest.LoadCommitRules(root, m.Config.Dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := commitmsg.Validate(message, crules)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	recordRun(t.store, rep, "mcp message")
	return mcp.NewToolResultText(rep.Render()), nil
}
