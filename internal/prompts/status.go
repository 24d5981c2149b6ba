package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the gov-status MCP prompt.
// It instructs the AI to read and present the project's governance state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("gov-status",
		mcp.WithPromptDescription(
			"Check the governance status of this project: recent validation "+
				"runs, their verdicts, and recurring violations.",
		),
	)
}

// Handle processes the gov-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Governance Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please call `gov_history` to check recent validation runs.\n\n" +
						"Then:\n" +
						"1. Show the recent verdicts in a compact list\n" +
						"2. Point out files or rules that fail repeatedly\n" +
						"3. Tell me what to fix first",
				),
			},
		},
	}, nil
}
