package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/decree-tools/decree/internal/artifact"
	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
)

// Discover expands the rule set's glob patterns relative to root and
// returns the matching file paths, sorted and deduplicated.
func Discover(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := map[string]bool{}
	var out []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			info, err := os.Stat(filepath.Join(root, m))
			if err != nil || info.IsDir() {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	sort.Strings(out)
	return out, nil
}

// CheckType discovers, parses, and validates every artifact of one type.
// Parsed documents are returned alongside the report so the caller can
// run cross-reference checks (evidence → ADR) over them.
//
// Unparseable files are violations, not errors: a corrupt artifact fails
// the run, it does not abort it.
func CheckType(root string, rs manifest.RuleSet) (*report.Report, []*artifact.Document, error) {
	v, err := NewValidator(rs)
	if err != nil {
		return nil, nil, err
	}

	paths, err := Discover(root, rs.Paths)
	if err != nil {
		return nil, nil, err
	}

	rep := &report.Report{Kind: rs.Artifact}
	var docs []*artifact.Document

	for _, rel := range paths {
		rep.Checked++
		doc, err := artifact.ParseFile(filepath.Join(root, rel))
		if err != nil {
			rep.Add(rel, RuleFrontmatterMissing, fmt.Sprintf("unparseable artifact: %v", err))
			continue
		}
		doc.Path = rel // report paths relative to the project root
		docs = append(docs, doc)
		rep.Violations = append(rep.Violations, v.Check(doc)...)
	}

	return rep, docs, nil
}
