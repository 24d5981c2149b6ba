// Package prompts implements the MCP prompts decree exposes to hosts.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the gov-review MCP prompt.
// It instructs the AI to run a full governance review of the project.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("gov-review",
		mcp.WithPromptDescription(
			"Run a full governance review: validate ADRs and evidence, "+
				"summarize the violations, and propose concrete fixes.",
		),
	)
}

// Handle processes the gov-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Governance Review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `gov_check_adr` and `gov_check_evidence` on this project.\n\n" +
						"Then:\n" +
						"1. Summarize the overall verdict per artifact type\n" +
						"2. Group the violations by file and explain each one in plain language\n" +
						"3. For every violation, propose the exact edit that would fix it\n" +
						"4. If everything passes, confirm the project is clean and stop",
				),
			},
		},
	}, nil
}
