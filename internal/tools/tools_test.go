package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/decree-tools/decree/internal/history"
)

// --- Test helpers ---

// setupGovernedProject creates a temp dir holding a complete governed
// project and changes cwd into it so resolveProject finds the manifest.
// The single ADR is valid; pass breakADR to strip its Consequences
// section and its status value.
func setupGovernedProject(t *testing.T, breakADR bool) string {
	t.Helper()
	tmpDir := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(tmpDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup: mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup: write %s: %v", rel, err)
		}
	}

	write("decree.toml", `
[project]
name = "tools-test"

[config]
dir = "governance/config"
artifacts = ["adr", "evidence"]
`)
	write("governance/config/adr.yaml", `
paths: ["docs/adr/*.md"]
filename_pattern: '^ADR-\d{3}-[a-z0-9-]+\.md$'
frontmatter:
  required: [id, title, status]
  values:
    status: [proposed, accepted]
sections:
  required: [Context, Decision, Consequences]
`)
	write("governance/config/evidence.yaml", `
paths: ["docs/evidence/*.md"]
frontmatter:
  required: [id, adr]
`)

	adr := `---
id: ADR-001
title: Adopt governance tooling
status: accepted
---

## Context

## Decision

## Consequences
`
	if breakADR {
		adr = strings.ReplaceAll(adr, "status: accepted", "status: invented")
		adr = strings.Replace(adr, "\n## Consequences\n", "", 1)
	}
	write("docs/adr/ADR-001-adopt-governance.md", adr)
	write("docs/evidence/EV-001-bench.md", `---
id: EV-001
adr: ADR-001
---
`)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("setup: getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("setup: chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	return tmpDir
}

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.New(history.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("history.New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- CheckADRTool ---

func TestCheckADRTool_Definition(t *testing.T) {
	def := NewCheckADRTool(nil).Definition()
	if def.Name != "gov_check_adr" {
		t.Errorf("name = %q, want gov_check_adr", def.Name)
	}
}

func TestCheckADRTool_Handle_Pass(t *testing.T) {
	setupGovernedProject(t, false)

	tool := NewCheckADRTool(nil)
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	if text := getResultText(result); !strings.Contains(text, "PASS") {
		t.Errorf("result should contain PASS, got: %s", text)
	}
}

func TestCheckADRTool_Handle_Fail_RecordsHistory(t *testing.T) {
	setupGovernedProject(t, true)
	store := newTestStore(t)

	tool := NewCheckADRTool(store)
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected report result, got tool error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "FAIL") {
		t.Errorf("result should contain FAIL, got: %s", text)
	}
	if !strings.Contains(text, "frontmatter/value") || !strings.Contains(text, "sections/required") {
		t.Errorf("result should list both violations, got: %s", text)
	}

	runs, err := store.RecentRuns("adr", 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Verdict != "fail" {
		t.Errorf("recorded runs = %+v, want one failed adr run", runs)
	}
}

// --- CheckEvidenceTool ---

func TestCheckEvidenceTool_Handle_CrossReference(t *testing.T) {
	tmpDir := setupGovernedProject(t, false)

	// Add evidence pointing at a nonexistent ADR.
	dangling := filepath.Join(tmpDir, "docs", "evidence", "EV-002-dangling.md")
	if err := os.WriteFile(dangling, []byte("---\nid: EV-002\nadr: ADR-404\n---\n"), 0o644); err != nil {
		t.Fatalf("write dangling evidence: %v", err)
	}

	tool := NewCheckEvidenceTool(nil)
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "evidence/ref") || !strings.Contains(text, "ADR-404") {
		t.Errorf("result should flag the dangling reference, got: %s", text)
	}
}

// --- CheckCommitTool ---

func TestCheckCommitTool_Handle(t *testing.T) {
	setupGovernedProject(t, false)
	tool := NewCheckCommitTool(nil)

	tests := []struct {
		name        string
		message     string
		wantToolErr bool
		wantText    string
	}{
		{
			name:     "valid message",
			message:  "feat(parser): add frontmatter support\n\n- parse yaml block\n- skip fenced code\n",
			wantText: "PASS",
		},
		{
			name:     "unknown type",
			message:  "wip: half done",
			wantText: "subject/type",
		},
		{
			name:     "decision without ref",
			message:  "decision(storage): adopt sqlite",
			wantText: "ref/required",
		},
		{
			name:        "missing message",
			message:     "",
			wantToolErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = map[string]interface{}{"message": tt.message}

			result, err := tool.Handle(context.Background(), req)
			if err != nil {
				t.Fatalf("Handle failed: %v", err)
			}
			if isErrorResult(result) != tt.wantToolErr {
				t.Fatalf("isError = %v, want %v: %s", isErrorResult(result), tt.wantToolErr, getResultText(result))
			}
			if tt.wantText != "" && !strings.Contains(getResultText(result), tt.wantText) {
				t.Errorf("result should contain %q, got: %s", tt.wantText, getResultText(result))
			}
		})
	}
}

// --- ChangelogTool ---

func TestChangelogTool_Definition(t *testing.T) {
	def := NewChangelogTool().Definition()
	if def.Name != "gov_changelog" {
		t.Errorf("name = %q, want gov_changelog", def.Name)
	}
}

func TestChangelogTool_Handle_NotARepository(t *testing.T) {
	setupGovernedProject(t, false)

	tool := NewChangelogTool()
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	// The fixture is not a git repository, so the tool reports the git
	// failure as a tool error rather than crashing.
	if !isErrorResult(result) {
		t.Errorf("expected tool error outside a git repository, got: %s", getResultText(result))
	}
}

// --- HistoryTool ---

func TestHistoryTool_Handle_Disabled(t *testing.T) {
	tool := NewHistoryTool(nil)
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error when history is disabled")
	}
}

func TestHistoryTool_Handle_RecentAndSearch(t *testing.T) {
	setupGovernedProject(t, true)
	store := newTestStore(t)

	// Record a failing run through the ADR tool.
	adrTool := NewCheckADRTool(store)
	if _, err := adrTool.Handle(context.Background(), mcp.CallToolRequest{}); err != nil {
		t.Fatalf("seeding run failed: %v", err)
	}

	tool := NewHistoryTool(store)

	t.Run("recent runs", func(t *testing.T) {
		result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		text := getResultText(result)
		if !strings.Contains(text, "Recent runs (1)") || !strings.Contains(text, "FAIL") {
			t.Errorf("result = %s", text)
		}
	})

	t.Run("search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]interface{}{"search": "Consequences"}

		result, err := tool.Handle(context.Background(), req)
		if err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		text := getResultText(result)
		if !strings.Contains(text, "sections/required") {
			t.Errorf("search result = %s", text)
		}
	})

	t.Run("search with no matches", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]interface{}{"search": "nonexistent"}

		result, err := tool.Handle(context.Background(), req)
		if err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		if !strings.Contains(getResultText(result), "No violations match") {
			t.Errorf("result = %s", getResultText(result))
		}
	})
}
