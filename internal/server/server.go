// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts, and resources that depend on
// them. No validation logic lives here, only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/decree-tools/decree/internal/history"
	"github.com/decree-tools/decree/internal/prompts"
	"github.com/decree-tools/decree/internal/resources"
	"github.com/decree-tools/decree/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the history store's database
// connection and must be called on shutdown (typically via defer). It
// is always non-nil and safe to call even if history init failed.
func New(log zerolog.Logger) (*server.MCPServer, func(), error) {
	s := server.NewMCPServer(
		"decree",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// History is an independent subsystem: if it fails to initialize,
	// validation tools keep working and gov_history reports itself
	// disabled. The tools treat a nil store as "history off".
	cleanup := noop
	store, err := history.New(history.DefaultConfig())
	if err != nil {
		log.Warn().Err(err).Msg("run history disabled")
		store = nil
	} else {
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("closing history store")
			}
		}
	}

	checkADR := tools.NewCheckADRTool(store)
	s.AddTool(checkADR.Definition(), checkADR.Handle)

	checkEvidence := tools.NewCheckEvidenceTool(store)
	s.AddTool(checkEvidence.Definition(), checkEvidence.Handle)

	checkCommit := tools.NewCheckCommitTool(store)
	s.AddTool(checkCommit.Definition(), checkCommit.Handle)

	changelogTool := tools.NewChangelogTool()
	s.AddTool(changelogTool.Definition(), changelogTool.Handle)

	historyTool := tools.NewHistoryTool(store)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is the default cleanup when history is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use decree effectively.
func serverInstructions() string {
	return `You have access to decree, a governance MCP server for projects
that track architecture decisions (ADRs) and supporting evidence.

## When to use decree

Use the gov_* tools whenever the user:
- Edits or adds an ADR or evidence document
- Asks whether the project's decision records are in order
- Writes a commit message for governed work
- Asks for release notes or a changelog

## Tools

- gov_check_adr: validate every ADR against the project's rule sets.
- gov_check_evidence: validate evidence, including that each document's
  'adr' field points at an existing ADR id.
- gov_check_commit: validate a commit message against the three-part
  contract (typed subject, bulleted body, conditional Refs trailer).
  Call it BEFORE committing, with the full proposed message.
- gov_changelog: render a deterministic grouped changelog from git
  history. Pass 'since' to limit the range to a release tag.
- gov_history: list recent validation runs or search past violations.

## Workflow

1. After editing governed documents, run the matching check tool and
   report the verdict to the user.
2. When a check fails, fix the listed violations in the files, then run
   the check again. Do not silence rules by editing the rule sets unless
   the user asks for that.
3. When writing commit messages, validate with gov_check_commit first
   and only present messages that pass.

## Rules

- A FAIL verdict means the project is out of compliance. Never describe
  a failing project as compliant.
- Violations name the rule (e.g. sections/required) and the file. Quote
  both when reporting to the user.
- The rule sets live under the directory named in decree.toml. Read them
  when the user asks why a rule fired.`
}
