// Package rules validates parsed artifacts against a resolved rule set:
// frontmatter fields, enumerated values, tag vocabulary, filename
// patterns, and required sections.
package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/decree-tools/decree/internal/artifact"
	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
)

// Rule identifiers used in violations. Stable: history queries and CI
// annotations key off these.
const (
	RuleFilenamePattern     = "filename/pattern"
	RuleFrontmatterMissing  = "frontmatter/missing"
	RuleFrontmatterRequired = "frontmatter/required"
	RuleFrontmatterValue    = "frontmatter/value"
	RuleTagUnknown          = "tags/unknown"
	RuleSectionRequired     = "sections/required"
	RuleEvidenceRef         = "evidence/ref"
)

// Validator checks documents against one artifact type's rule set.
type Validator struct {
	rules   manifest.RuleSet
	namePat *regexp.Regexp
	tags    map[string]bool
}

// NewValidator compiles the rule set's patterns. Rule sets with an
// invalid filename pattern are rejected here rather than at check time.
func NewValidator(rs manifest.RuleSet) (*Validator, error) {
	v := &Validator{rules: rs}

	if rs.FilenamePattern != "" {
		pat, err := regexp.Compile(rs.FilenamePattern)
		if err != nil {
			return nil, fmt.Errorf("compiling filename pattern for %s: %w", rs.Artifact, err)
		}
		v.namePat = pat
	}

	v.tags = make(map[string]bool, len(rs.Tags))
	for _, t := range rs.Tags {
		v.tags[t] = true
	}
	return v, nil
}

// Check validates a single document and returns its violations.
func (v *Validator) Check(doc *artifact.Document) []report.Violation {
	var out []report.Violation
	add := func(rule, format string, args ...any) {
		out = append(out, report.Violation{
			Path:    doc.Path,
			Rule:    rule,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if v.namePat != nil && doc.Path != "" {
		name := filepath.Base(doc.Path)
		if !v.namePat.MatchString(name) {
			add(RuleFilenamePattern, "filename %q does not match %s", name, v.rules.FilenamePattern)
		}
	}

	if doc.Frontmatter == nil {
		add(RuleFrontmatterMissing, "document has no frontmatter block")
		// Field checks would all fail with noise; sections still checked.
	} else {
		for _, field := range v.rules.Frontmatter.Required {
			val, ok := doc.Field(field)
			if !ok {
				// Lists satisfy presence too (tags is usually required).
				if list := doc.ListField(field); len(list) > 0 {
					continue
				}
				add(RuleFrontmatterRequired, "required field %q is missing", field)
				continue
			}
			if strings.TrimSpace(val) == "" {
				add(RuleFrontmatterRequired, "required field %q is empty", field)
			}
		}

		for field, allowed := range v.rules.Frontmatter.Values {
			val, ok := doc.Field(field)
			if !ok || val == "" {
				continue // presence is the required list's concern
			}
			if !contains(allowed, val) {
				add(RuleFrontmatterValue, "field %q has value %q, allowed: %s", field, val, strings.Join(allowed, ", "))
			}
		}

		if len(v.tags) > 0 {
			for _, tag := range doc.ListField("tags") {
				if !v.tags[tag] {
					add(RuleTagUnknown, "tag %q is not in the shared vocabulary", tag)
				}
			}
		}
	}

	for _, section := range v.rules.Sections.Required {
		if !doc.HasSection(section) {
			add(RuleSectionRequired, "required section %q is missing", section)
		}
	}

	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
