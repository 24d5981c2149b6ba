package manifest

import (
	"path/filepath"
	"reflect"
	"testing"
)

const commonYAML = `
tags:
  - architecture
  - process
  - security
frontmatter:
  values:
    status: [proposed, accepted]
`

const adrYAML = `
extends: common.yaml
artifact: adr
paths:
  - "docs/adr/**/*.md"
filename_pattern: '^ADR-\d{3}-[a-z0-9-]+\.md$'
frontmatter:
  required: [id, title, status, date, tags]
  values:
    status: [proposed, accepted, deprecated, superseded]
sections:
  required: [Context, Decision, Consequences]
tags:
  - tooling
`

func writeConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(root, "governance/config", name), content)
	}
	return root
}

func TestLoadRuleSetWithParent(t *testing.T) {
	root := writeConfigDir(t, map[string]string{
		"common.yaml": commonYAML,
		"adr.yaml":    adrYAML,
	})

	rs, err := LoadRuleSet(root, "governance/config", "adr")
	if err != nil {
		t.Fatalf("LoadRuleSet() error = %v", err)
	}

	if rs.Artifact != "adr" {
		t.Errorf("artifact = %q, want adr", rs.Artifact)
	}
	// Tags: union of parent and child, sorted.
	wantTags := []string{"architecture", "process", "security", "tooling"}
	if !reflect.DeepEqual(rs.Tags, wantTags) {
		t.Errorf("tags = %v, want %v", rs.Tags, wantTags)
	}
	// Child's status enum overrides the parent's.
	wantStatus := []string{"proposed", "accepted", "deprecated", "superseded"}
	if !reflect.DeepEqual(rs.Frontmatter.Values["status"], wantStatus) {
		t.Errorf("status values = %v, want %v", rs.Frontmatter.Values["status"], wantStatus)
	}
	if len(rs.Sections.Required) != 3 {
		t.Errorf("required sections = %v", rs.Sections.Required)
	}
	if rs.Extends != "" {
		t.Errorf("resolved rule set still carries extends = %q", rs.Extends)
	}
}

func TestLoadRuleSetParentKeyInherited(t *testing.T) {
	root := writeConfigDir(t, map[string]string{
		"common.yaml": `
frontmatter:
  values:
    status: [proposed, accepted]
    priority: [low, high]
`,
		"evidence.yaml": `
extends: common.yaml
frontmatter:
  required: [id, adr, kind, date]
  values:
    kind: [benchmark, review, test-run]
`,
	})

	rs, err := LoadRuleSet(root, "governance/config", "evidence")
	if err != nil {
		t.Fatalf("LoadRuleSet() error = %v", err)
	}

	// Keys the child doesn't touch are inherited from the parent.
	if !reflect.DeepEqual(rs.Frontmatter.Values["priority"], []string{"low", "high"}) {
		t.Errorf("priority values = %v, want inherited [low high]", rs.Frontmatter.Values["priority"])
	}
	if !reflect.DeepEqual(rs.Frontmatter.Values["kind"], []string{"benchmark", "review", "test-run"}) {
		t.Errorf("kind values = %v", rs.Frontmatter.Values["kind"])
	}
}

func TestLoadRuleSetStandalone(t *testing.T) {
	root := writeConfigDir(t, map[string]string{
		"policy.yaml": `
paths: ["docs/policy/*.md"]
tags: [process, process, security]
`,
	})

	rs, err := LoadRuleSet(root, "governance/config", "policy")
	if err != nil {
		t.Fatalf("LoadRuleSet() error = %v", err)
	}
	if rs.Artifact != "policy" {
		t.Errorf("artifact defaulted to %q, want policy", rs.Artifact)
	}
	if !reflect.DeepEqual(rs.Tags, []string{"process", "security"}) {
		t.Errorf("tags = %v, want deduped sorted [process security]", rs.Tags)
	}
}

func TestLoadRuleSetChainErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "chain too deep",
			files: map[string]string{
				"base.yaml":   `tags: [a]`,
				"common.yaml": "extends: base.yaml\ntags: [b]",
				"adr.yaml":    "extends: common.yaml\ntags: [c]",
			},
		},
		{
			name: "extends itself",
			files: map[string]string{
				"adr.yaml": "extends: adr.yaml",
			},
		},
		{
			name: "missing parent",
			files: map[string]string{
				"adr.yaml": "extends: common.yaml",
			},
		},
		{
			name:  "missing rule set",
			files: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeConfigDir(t, tt.files)
			if _, err := LoadRuleSet(root, "governance/config", "adr"); err == nil {
				t.Errorf("LoadRuleSet() succeeded, want error")
			}
		})
	}
}

func TestLoadCommitRules(t *testing.T) {
	t.Run("defaults when absent", func(t *testing.T) {
		root := writeConfigDir(t, nil)
		rules, err := LoadCommitRules(root, "governance/config")
		if err != nil {
			t.Fatalf("LoadCommitRules() error = %v", err)
		}
		if !reflect.DeepEqual(rules, DefaultCommitRules()) {
			t.Errorf("rules = %+v, want defaults", rules)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		root := writeConfigDir(t, map[string]string{
			"commit.yaml": `
types: [decision, docs]
require_ref: [decision, docs]
max_subject: 60
`,
		})
		rules, err := LoadCommitRules(root, "governance/config")
		if err != nil {
			t.Fatalf("LoadCommitRules() error = %v", err)
		}
		if !reflect.DeepEqual(rules.Types, []string{"decision", "docs"}) {
			t.Errorf("types = %v", rules.Types)
		}
		if rules.MaxSubject != 60 {
			t.Errorf("max subject = %d, want 60", rules.MaxSubject)
		}
		// Untouched fields keep their defaults.
		if rules.RefPattern != DefaultCommitRules().RefPattern {
			t.Errorf("ref pattern = %q, want default", rules.RefPattern)
		}
	})

	t.Run("empty types rejected", func(t *testing.T) {
		root := writeConfigDir(t, map[string]string{
			"commit.yaml": "types: []\n",
		})
		if _, err := LoadCommitRules(root, "governance/config"); err == nil {
			t.Errorf("LoadCommitRules() succeeded, want error")
		}
	})
}
