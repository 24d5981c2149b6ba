// Package report defines the violation and report types shared by all
// validators, plus the plain-text rendering used by the CLI and MCP tools.
package report

import (
	"fmt"
	"strings"
)

// Violation is a single failed check against one target.
type Violation struct {
	// Path is the file (or "commit message") the violation applies to.
	Path string `json:"path"`
	// Rule names the failed check, e.g. "frontmatter/required".
	Rule string `json:"rule"`
	// Message explains what was expected and what was found.
	Message string `json:"message"`
}

// Report aggregates the outcome of one validation run.
type Report struct {
	// Kind identifies the validator: "adr", "evidence", "commit".
	Kind string `json:"kind"`
	// Checked is the number of targets examined.
	Checked int `json:"checked"`
	// Violations collects every failed check across all targets.
	Violations []Violation `json:"violations"`
}

// OK reports whether the run passed with no violations.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Verdict returns "pass" or "fail" for persistence and display.
func (r *Report) Verdict() string {
	if r.OK() {
		return "pass"
	}
	return "fail"
}

// Add appends a violation.
func (r *Report) Add(path, rule, message string) {
	r.Violations = append(r.Violations, Violation{Path: path, Rule: rule, Message: message})
}

// Merge folds another report's counts and violations into this one.
func (r *Report) Merge(other *Report) {
	r.Checked += other.Checked
	r.Violations = append(r.Violations, other.Violations...)
}

// Render formats the report as plain text: one line per violation grouped
// by path, then a summary line. Deterministic for identical input.
func (r *Report) Render() string {
	var b strings.Builder

	lastPath := ""
	for _, v := range r.Violations {
		if v.Path != lastPath {
			fmt.Fprintf(&b, "%s\n", v.Path)
			lastPath = v.Path
		}
		fmt.Fprintf(&b, "  [%s] %s\n", v.Rule, v.Message)
	}

	if len(r.Violations) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s: checked %d, %d violation(s): %s\n",
		r.Kind, r.Checked, len(r.Violations), strings.ToUpper(r.Verdict()))
	return b.String()
}
