package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// RuleSet declares the validation rules for one artifact type.
//
// A rule set may extend exactly one parent (typically common.yaml holding
// the shared tag vocabulary). Merge semantics:
//   - tags: union of parent and child, sorted
//   - frontmatter.values: per-key, child wins
//   - every other non-empty child field replaces the parent's
type RuleSet struct {
	Extends         string           `yaml:"extends,omitempty"`
	Artifact        string           `yaml:"artifact"`
	Paths           []string         `yaml:"paths"`
	FilenamePattern string           `yaml:"filename_pattern"`
	Frontmatter     FrontmatterRules `yaml:"frontmatter"`
	Sections        SectionRules     `yaml:"sections"`
	Tags            []string         `yaml:"tags"`
}

// FrontmatterRules constrain the YAML frontmatter block.
type FrontmatterRules struct {
	// Required fields must be present and non-empty.
	Required []string `yaml:"required"`
	// Values restricts named fields to an enumerated set.
	Values map[string][]string `yaml:"values"`
}

// SectionRules constrain the markdown body's ## sections.
type SectionRules struct {
	Required []string `yaml:"required"`
}

// CommitRules declare the commit message contract, loaded from
// commit.yaml in the config directory.
type CommitRules struct {
	// Types is the allowed subject type vocabulary.
	Types []string `yaml:"types"`
	// ScopePattern constrains the optional (scope) segment.
	ScopePattern string `yaml:"scope_pattern"`
	// MaxSubject is the maximum subject line length.
	MaxSubject int `yaml:"max_subject"`
	// BulletExempt lists types whose bodies need no bullet list.
	BulletExempt []string `yaml:"bullet_exempt"`
	// RequireRef lists types that must carry a Refs trailer.
	RequireRef []string `yaml:"require_ref"`
	// RefPattern is the accepted reference id format.
	RefPattern string `yaml:"ref_pattern"`
}

// DefaultCommitRules returns the contract used when commit.yaml is absent.
func DefaultCommitRules() CommitRules {
	return CommitRules{
		Types:        []string{"decision", "feat", "fix", "docs", "chore"},
		ScopePattern: `^[a-z0-9][a-z0-9-]*$`,
		MaxSubject:   72,
		BulletExempt: []string{"chore"},
		RequireRef:   []string{"decision"},
		RefPattern:   `^ADR-\d{3}$`,
	}
}

// LoadRuleSet loads <configDir>/<artifactType>.yaml relative to root and
// resolves its parent chain.
func LoadRuleSet(root, configDir, artifactType string) (*RuleSet, error) {
	path := filepath.Join(root, configDir, artifactType+".yaml")
	child, err := readRuleSet(path)
	if err != nil {
		return nil, err
	}
	if child.Artifact == "" {
		child.Artifact = artifactType
	}

	if child.Extends == "" {
		child.normalize()
		return child, nil
	}

	parentPath := filepath.Join(root, configDir, child.Extends)
	if parentPath == path {
		return nil, fmt.Errorf("rule set %s extends itself", path)
	}
	parent, err := readRuleSet(parentPath)
	if err != nil {
		return nil, fmt.Errorf("resolving parent of %s: %w", path, err)
	}
	if parent.Extends != "" {
		return nil, fmt.Errorf("rule set chain too deep: %s extends %s which extends %s (only one level of inheritance is allowed)",
			path, child.Extends, parent.Extends)
	}

	merged := mergeRuleSets(parent, child)
	merged.normalize()
	return merged, nil
}

// LoadCommitRules loads commit.yaml from the config directory, falling
// back to defaults when the file does not exist.
func LoadCommitRules(root, configDir string) (CommitRules, error) {
	path := filepath.Join(root, configDir, CommitRulesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCommitRules(), nil
		}
		return CommitRules{}, fmt.Errorf("reading commit rules %s: %w", path, err)
	}

	rules := DefaultCommitRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return CommitRules{}, fmt.Errorf("parsing commit rules %s: %w", path, err)
	}
	if len(rules.Types) == 0 {
		return CommitRules{}, fmt.Errorf("commit rules %s declare no types", path)
	}
	if rules.MaxSubject <= 0 {
		rules.MaxSubject = 72
	}
	return rules, nil
}

func readRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule set %s: %w", path, err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rule set %s: %w", path, err)
	}
	return &rs, nil
}

// mergeRuleSets layers child over parent. The child's identity fields
// always win; list fields replace when the child sets them, except tags
// which are unioned.
func mergeRuleSets(parent, child *RuleSet) *RuleSet {
	merged := *parent
	merged.Extends = ""
	merged.Artifact = child.Artifact

	if len(child.Paths) > 0 {
		merged.Paths = child.Paths
	}
	if child.FilenamePattern != "" {
		merged.FilenamePattern = child.FilenamePattern
	}
	if len(child.Frontmatter.Required) > 0 {
		merged.Frontmatter.Required = child.Frontmatter.Required
	}
	if len(child.Frontmatter.Values) > 0 {
		values := make(map[string][]string, len(parent.Frontmatter.Values)+len(child.Frontmatter.Values))
		for k, v := range parent.Frontmatter.Values {
			values[k] = v
		}
		for k, v := range child.Frontmatter.Values {
			values[k] = v
		}
		merged.Frontmatter.Values = values
	}
	if len(child.Sections.Required) > 0 {
		merged.Sections.Required = child.Sections.Required
	}

	merged.Tags = unionTags(parent.Tags, child.Tags)
	return &merged
}

// normalize sorts and dedupes the tag vocabulary so merge output is
// deterministic regardless of declaration order.
func (rs *RuleSet) normalize() {
	rs.Tags = unionTags(rs.Tags, nil)
}

func unionTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, t := range a {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range b {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
