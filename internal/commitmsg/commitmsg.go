// Package commitmsg parses and validates commit messages against the
// repository's commit contract.
//
// The contract has three parts: a typed subject line, a bulleted body,
// and a conditional Refs trailer for governance-relevant types. The same
// parse feeds the changelog generator, so parsing is tolerant (a
// malformed subject yields an empty Type, not an error) while validation
// is strict.
package commitmsg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
)

// Rule identifiers for commit violations.
const (
	RuleSubjectFormat = "subject/format"
	RuleSubjectType   = "subject/type"
	RuleSubjectScope  = "subject/scope"
	RuleSubjectLength = "subject/length"
	RuleSubjectPeriod = "subject/period"
	RuleBodyBullets   = "body/bullets"
	RuleRefRequired   = "ref/required"
	RuleRefFormat     = "ref/format"
)

// scissors marks the cut line git appends with commit --verbose;
// everything below it is ignored.
const scissors = "# ------------------------ >8 ------------------------"

// subjectPattern splits "type(scope): summary". Type and scope are
// validated separately against the configured vocabulary.
var subjectPattern = regexp.MustCompile(`^([a-z][a-z0-9-]*)(?:\(([^)]*)\))?: (.*)$`)

// refTrailerPattern matches a "Refs: ID[, ID...]" trailer line.
var refTrailerPattern = regexp.MustCompile(`^Refs:\s*(.+)$`)

// Message is a structurally parsed commit message.
type Message struct {
	// Subject is the first non-comment line, verbatim.
	Subject string
	// Type, Scope, and Summary are the parsed subject parts. Type is
	// empty when the subject does not match type(scope): summary.
	Type    string
	Scope   string
	Summary string
	// Bullets holds the body's "- " list items, without the marker.
	Bullets []string
	// Refs holds ids from Refs: trailer lines.
	Refs []string
}

// Parse structurally parses a raw commit message. Comment lines and
// anything below a scissors line are dropped, matching git's behavior
// with commit templates.
func Parse(raw string) *Message {
	msg := &Message{}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == scissors {
			break
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, trimmed)
	}

	// Skip leading blank lines, then take the subject.
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return msg
	}
	msg.Subject = lines[i]
	i++

	if m := subjectPattern.FindStringSubmatch(msg.Subject); m != nil {
		msg.Type = m[1]
		msg.Scope = m[2]
		msg.Summary = m[3]
	}

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "- "):
			msg.Bullets = append(msg.Bullets, strings.TrimSpace(line[2:]))
		case refTrailerPattern.MatchString(line):
			m := refTrailerPattern.FindStringSubmatch(line)
			for _, ref := range strings.Split(m[1], ",") {
				if ref = strings.TrimSpace(ref); ref != "" {
					msg.Refs = append(msg.Refs, ref)
				}
			}
		}
	}

	return msg
}

// Validate checks a raw commit message against the contract and returns
// a report. The report's Path is fixed to "commit message" since there
// is no file.
func Validate(raw string, rules manifest.CommitRules) (*report.Report, error) {
	scopePat, refPat, err := compilePatterns(rules)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{Kind: "commit", Checked: 1}
	add := func(rule, format string, args ...any) {
		rep.Add("commit message", rule, fmt.Sprintf(format, args...))
	}

	msg := Parse(raw)

	// Part 1: subject contract.
	if msg.Subject == "" {
		add(RuleSubjectFormat, "message is empty")
		return rep, nil
	}
	if msg.Type == "" {
		add(RuleSubjectFormat, "subject %q does not match type(scope): summary", msg.Subject)
		return rep, nil
	}
	if !contains(rules.Types, msg.Type) {
		add(RuleSubjectType, "type %q is not allowed, expected one of: %s", msg.Type, strings.Join(rules.Types, ", "))
	}
	if msg.Scope != "" && scopePat != nil && !scopePat.MatchString(msg.Scope) {
		add(RuleSubjectScope, "scope %q does not match %s", msg.Scope, rules.ScopePattern)
	}
	if strings.TrimSpace(msg.Summary) == "" {
		add(RuleSubjectFormat, "subject has no summary after the colon")
	}
	if len(msg.Subject) > rules.MaxSubject {
		add(RuleSubjectLength, "subject is %d characters, maximum is %d", len(msg.Subject), rules.MaxSubject)
	}
	if strings.HasSuffix(strings.TrimSpace(msg.Summary), ".") {
		add(RuleSubjectPeriod, "subject must not end with a period")
	}

	// Part 2: bulleted body.
	if len(msg.Bullets) == 0 && !contains(rules.BulletExempt, msg.Type) {
		add(RuleBodyBullets, "body needs at least one \"- \" bullet line (type %q is not exempt)", msg.Type)
	}

	// Part 3: conditional Refs trailer.
	if contains(rules.RequireRef, msg.Type) && len(msg.Refs) == 0 {
		add(RuleRefRequired, "type %q requires a Refs: trailer", msg.Type)
	}
	if refPat != nil {
		for _, ref := range msg.Refs {
			if !refPat.MatchString(ref) {
				add(RuleRefFormat, "ref %q does not match %s", ref, rules.RefPattern)
			}
		}
	}

	return rep, nil
}

func compilePatterns(rules manifest.CommitRules) (scopePat, refPat *regexp.Regexp, err error) {
	if rules.ScopePattern != "" {
		scopePat, err = regexp.Compile(rules.ScopePattern)
		if err != nil {
			return nil, nil, fmt.Errorf("compiling scope pattern: %w", err)
		}
	}
	if rules.RefPattern != "" {
		refPat, err = regexp.Compile(rules.RefPattern)
		if err != nil {
			return nil, nil, fmt.Errorf("compiling ref pattern: %w", err)
		}
	}
	return scopePat, refPat, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
