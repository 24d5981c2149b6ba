package rules

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/decree-tools/decree/internal/artifact"
	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
)

func adrRuleSet() manifest.RuleSet {
	return manifest.RuleSet{
		Artifact:        "adr",
		Paths:           []string{"docs/adr/**/*.md"},
		FilenamePattern: `^ADR-\d{3}-[a-z0-9-]+\.md$`,
		Frontmatter: manifest.FrontmatterRules{
			Required: []string{"id", "title", "status", "tags"},
			Values: map[string][]string{
				"status": {"proposed", "accepted", "deprecated", "superseded"},
			},
		},
		Sections: manifest.SectionRules{
			Required: []string{"Context", "Decision", "Consequences"},
		},
		Tags: []string{"architecture", "process", "tooling"},
	}
}

func parseDoc(t *testing.T, path, content string) *artifact.Document {
	t.Helper()
	doc, err := artifact.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	doc.Path = path
	return doc
}

func ruleNames(violations []report.Violation) []string {
	var out []string
	for _, v := range violations {
		out = append(out, v.Rule)
	}
	return out
}

const validADR = `---
id: ADR-001
title: Adopt decree
status: accepted
tags: [tooling]
---

## Context

x

## Decision

y

## Consequences

z
`

func TestValidatorCheck(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		content   string
		wantRules []string
	}{
		{
			name:      "valid document",
			path:      "docs/adr/ADR-001-adopt-decree.md",
			content:   validADR,
			wantRules: nil,
		},
		{
			name:      "bad filename",
			path:      "docs/adr/adopt-decree.md",
			content:   validADR,
			wantRules: []string{RuleFilenamePattern},
		},
		{
			name:    "missing and empty required fields",
			path:    "docs/adr/ADR-002-incomplete.md",
			content: "---\nid: ADR-002\ntitle: \"\"\ntags: [tooling]\n---\n\n## Context\n\n## Decision\n\n## Consequences\n",
			wantRules: []string{
				RuleFrontmatterRequired, // title empty
				RuleFrontmatterRequired, // status missing
			},
		},
		{
			name:      "status outside enum",
			path:      "docs/adr/ADR-003-bad-status.md",
			content:   "---\nid: ADR-003\ntitle: t\nstatus: rejected\ntags: [tooling]\n---\n\n## Context\n\n## Decision\n\n## Consequences\n",
			wantRules: []string{RuleFrontmatterValue},
		},
		{
			name:      "unknown tag",
			path:      "docs/adr/ADR-004-bad-tag.md",
			content:   "---\nid: ADR-004\ntitle: t\nstatus: accepted\ntags: [velocity]\n---\n\n## Context\n\n## Decision\n\n## Consequences\n",
			wantRules: []string{RuleTagUnknown},
		},
		{
			name:      "missing section",
			path:      "docs/adr/ADR-005-no-consequences.md",
			content:   "---\nid: ADR-005\ntitle: t\nstatus: accepted\ntags: [tooling]\n---\n\n## Context\n\n## Decision\n",
			wantRules: []string{RuleSectionRequired},
		},
		{
			name:    "no frontmatter at all",
			path:    "docs/adr/ADR-006-plain.md",
			content: "## Context\n\n## Decision\n\n## Consequences\n",
			wantRules: []string{
				RuleFrontmatterMissing,
			},
		},
	}

	v, err := NewValidator(adrRuleSet())
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ruleNames(v.Check(parseDoc(t, tt.path, tt.content)))
			if !reflect.DeepEqual(got, tt.wantRules) {
				t.Errorf("Check() rules = %v, want %v", got, tt.wantRules)
			}
		})
	}
}

func TestValidatorSectionInFenceNotCounted(t *testing.T) {
	v, err := NewValidator(adrRuleSet())
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	content := "---\nid: ADR-007\ntitle: t\nstatus: accepted\ntags: [tooling]\n---\n\n## Context\n\n## Decision\n\n```\n## Consequences\n```\n"
	got := ruleNames(v.Check(parseDoc(t, "docs/adr/ADR-007-fenced.md", content)))
	if !reflect.DeepEqual(got, []string{RuleSectionRequired}) {
		t.Errorf("Check() rules = %v, want section violation for fenced heading", got)
	}
}

func TestNewValidatorBadPattern(t *testing.T) {
	rs := adrRuleSet()
	rs.FilenamePattern = "(["
	if _, err := NewValidator(rs); err == nil {
		t.Errorf("NewValidator() succeeded with invalid pattern, want error")
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"docs/adr/ADR-001-first.md",
		"docs/adr/2026/ADR-002-nested.md",
		"docs/evidence/EV-001-bench.md",
		"README.md",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got, err := Discover(root, []string{"docs/adr/**/*.md", "docs/adr/*.md"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := []string{
		"docs/adr/2026/ADR-002-nested.md",
		"docs/adr/ADR-001-first.md",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover() = %v, want %v (sorted, deduped)", got, want)
	}
}

func TestCheckType(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("docs/adr/ADR-001-adopt-decree.md", validADR)
	write("docs/adr/ADR-002-bad.md", "---\nid: ADR-002\ntitle: t\nstatus: invented\ntags: [tooling]\n---\n\n## Context\n\n## Decision\n\n## Consequences\n")

	rep, docs, err := CheckType(root, adrRuleSet())
	if err != nil {
		t.Fatalf("CheckType() error = %v", err)
	}
	if rep.Checked != 2 {
		t.Errorf("checked = %d, want 2", rep.Checked)
	}
	if len(docs) != 2 {
		t.Errorf("parsed docs = %d, want 2", len(docs))
	}
	if rep.OK() {
		t.Errorf("report OK with a bad status value")
	}
	if got := ruleNames(rep.Violations); !reflect.DeepEqual(got, []string{RuleFrontmatterValue}) {
		t.Errorf("violations = %v", got)
	}
	// Violation paths are relative to the project root.
	if rep.Violations[0].Path != "docs/adr/ADR-002-bad.md" {
		t.Errorf("violation path = %q", rep.Violations[0].Path)
	}
}

func TestEvidenceRefs(t *testing.T) {
	adrs := ADRIndex([]*artifact.Document{
		parseDoc(t, "docs/adr/ADR-001-a.md", validADR),
	})
	if !adrs["ADR-001"] {
		t.Fatalf("ADRIndex missing ADR-001: %v", adrs)
	}

	evidence := []*artifact.Document{
		parseDoc(t, "docs/evidence/EV-001-ok.md", "---\nid: EV-001\nadr: ADR-001\nkind: benchmark\n---\n"),
		parseDoc(t, "docs/evidence/EV-002-dangling.md", "---\nid: EV-002\nadr: ADR-999\nkind: benchmark\n---\n"),
		parseDoc(t, "docs/evidence/EV-003-no-ref.md", "---\nid: EV-003\nkind: benchmark\n---\n"),
	}

	got := CheckEvidenceRefs(evidence, adrs)
	if len(got) != 1 {
		t.Fatalf("violations = %v, want exactly one dangling ref", got)
	}
	if got[0].Path != "docs/evidence/EV-002-dangling.md" || got[0].Rule != RuleEvidenceRef {
		t.Errorf("violation = %+v", got[0])
	}
}
