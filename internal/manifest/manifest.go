// Package manifest loads and resolves decree's configuration: the TOML
// root manifest plus the YAML rule sets it points at.
//
// Resolution is a two-step chain: decree.toml names a config directory and
// the artifact types it governs; each <type>.yaml rule set may extend one
// parent rule set that carries the shared vocabulary. Parents may not
// extend further — the chain is exactly child → parent.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ManifestFile is the root manifest filename looked up at the
	// project root.
	ManifestFile = "decree.toml"
	// DefaultConfigDir is used when the manifest omits [config] dir.
	DefaultConfigDir = "governance/config"
	// CommitRulesFile holds commit message rules inside the config dir.
	CommitRulesFile = "commit.yaml"
)

// Manifest is the parsed decree.toml.
type Manifest struct {
	Project   ProjectConfig   `toml:"project"`
	Config    ConfigPointer   `toml:"config"`
	Changelog ChangelogConfig `toml:"changelog"`
}

// ProjectConfig identifies the governed repository.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// ConfigPointer locates the rule set directory and lists the artifact
// types validated in this repository. Each type maps to <dir>/<type>.yaml.
type ConfigPointer struct {
	Dir       string   `toml:"dir"`
	Artifacts []string `toml:"artifacts"`
}

// ChangelogConfig controls changelog rendering: the document title and
// the ordered commit-type groups.
type ChangelogConfig struct {
	Title  string           `toml:"title"`
	Groups []ChangelogGroup `toml:"groups"`
}

// ChangelogGroup maps one commit type to its changelog heading.
type ChangelogGroup struct {
	Type    string `toml:"type"`
	Heading string `toml:"heading"`
}

// DefaultChangelogGroups is used when the manifest declares no groups.
var DefaultChangelogGroups = []ChangelogGroup{
	{Type: "decision", Heading: "Decisions"},
	{Type: "feat", Heading: "Features"},
	{Type: "fix", Heading: "Fixes"},
	{Type: "docs", Heading: "Documentation"},
	{Type: "chore", Heading: "Chores"},
}

// Load reads and validates the manifest at the given path, applying
// defaults for omitted fields.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if m.Project.Name == "" {
		m.Project.Name = filepath.Base(filepath.Dir(path))
	}
	if m.Config.Dir == "" {
		m.Config.Dir = DefaultConfigDir
	}
	if len(m.Config.Artifacts) == 0 {
		m.Config.Artifacts = []string{"adr", "evidence"}
	}
	if m.Changelog.Title == "" {
		m.Changelog.Title = "Changelog"
	}
	if len(m.Changelog.Groups) == 0 {
		m.Changelog.Groups = DefaultChangelogGroups
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks structural constraints the defaults can't fix.
func (m *Manifest) Validate() error {
	if filepath.IsAbs(m.Config.Dir) {
		return fmt.Errorf("config dir must be relative to the project root, got %q", m.Config.Dir)
	}
	seen := map[string]bool{}
	for _, a := range m.Config.Artifacts {
		if a == "" {
			return fmt.Errorf("empty artifact type in config.artifacts")
		}
		if seen[a] {
			return fmt.Errorf("duplicate artifact type %q in config.artifacts", a)
		}
		seen[a] = true
	}
	for _, g := range m.Changelog.Groups {
		if g.Type == "" || g.Heading == "" {
			return fmt.Errorf("changelog group needs both type and heading, got type=%q heading=%q", g.Type, g.Heading)
		}
	}
	return nil
}

// FindRoot walks up from startDir looking for a decree.toml. If none is
// found it returns startDir — the caller decides whether that is fatal.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, ManifestFile)
		if _, err := os.Stat(candidate); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}

// LoadAt finds the project root at or above startDir and loads its
// manifest. Returns the root directory alongside the manifest.
func LoadAt(startDir string) (string, *Manifest, error) {
	root, err := FindRoot(startDir)
	if err != nil {
		return "", nil, err
	}
	m, err := Load(filepath.Join(root, ManifestFile))
	if err != nil {
		return "", nil, err
	}
	return root, m, nil
}
