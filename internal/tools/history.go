package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/history"
)

// HistoryTool handles the gov_history MCP tool.
// It queries the persistent run history: recent runs, full-text search
// over past violations, and aggregate statistics.
type HistoryTool struct {
	store *history.Store
}

// NewHistoryTool creates a HistoryTool. store may be nil.
func NewHistoryTool(store *history.Store) *HistoryTool {
	return &HistoryTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("gov_history",
		mcp.WithDescription(
			"Query past validation runs. With no arguments, lists recent runs "+
				"with their verdicts. 'search' runs a full-text query over stored "+
				"violation messages. 'kind' narrows recent runs to one report "+
				"kind (adr, evidence, artifacts, commit).",
		),
		mcp.WithString("kind",
			mcp.Description("Filter recent runs by report kind. Ignored when 'search' is set."),
		),
		mcp.WithString("search",
			mcp.Description("Full-text query over past violation messages."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default 20)."),
		),
	)
}

// Handle processes the gov_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.store == nil {
		return mcp.NewToolResultError("history is disabled: the history database could not be opened"), nil
	}

	kind := req.GetString("kind", "")
	search := req.GetString("search", "")
	limit := intArg(req, "limit", 20)

	if search != "" {
		rows, err := t.store.SearchViolations(search, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(renderViolationRows(search, rows)), nil
	}

	runs, err := t.store.RecentRuns(kind, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderRuns(runs)), nil
}

func renderRuns(runs []history.Run) string {
	if len(runs) == 0 {
		return "No recorded runs."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Recent runs (%d)\n\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(&b, "- %s [%s] %s: %d violation(s) at %s (run %s)\n",
			strings.ToUpper(r.Verdict), r.Kind, r.Target, r.Violations, r.CreatedAt, r.ID)
	}
	return b.String()
}

func renderViolationRows(query string, rows []history.ViolationRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No violations match %q.", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Violations matching %q (%d)\n\n", query, len(rows))
	for _, v := range rows {
		fmt.Fprintf(&b, "- [%s] %s: %s (%s, run %s)\n", v.Rule, v.Path, v.Message, v.Kind, v.RunID)
	}
	return b.String()
}
