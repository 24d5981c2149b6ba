package changelog

import (
	"fmt"
	"strings"

	"github.com/decree-tools/decree/internal/manifest"
)

// otherHeading collects commits whose type is unknown or whose subject
// never parsed. It always renders last.
const otherHeading = "Other"

// Render produces the changelog document. The format is fixed:
//
//	# <Title> (<since>..HEAD)
//
//	## <Group heading>
//
//	- <summary> [scope] (<hash>)
//	  - Refs: ADR-012
//
// Groups render in configured order, empty groups are skipped, and
// commits keep git log order within a group. Output is byte-identical
// for identical input.
func Render(cfg manifest.ChangelogConfig, since string, commits []Commit) string {
	groups := make(map[string][]Commit, len(cfg.Groups))
	known := make(map[string]bool, len(cfg.Groups))
	for _, g := range cfg.Groups {
		known[g.Type] = true
	}

	var other []Commit
	for _, c := range commits {
		if c.Msg != nil && c.Msg.Type != "" && known[c.Msg.Type] {
			groups[c.Msg.Type] = append(groups[c.Msg.Type], c)
		} else {
			other = append(other, c)
		}
	}

	var b strings.Builder
	if since != "" {
		fmt.Fprintf(&b, "# %s (%s..HEAD)\n", cfg.Title, since)
	} else {
		fmt.Fprintf(&b, "# %s\n", cfg.Title)
	}

	for _, g := range cfg.Groups {
		renderGroup(&b, g.Heading, groups[g.Type], false)
	}
	// The Other group keeps raw subjects: its commits either never
	// parsed or carry a type outside the configured vocabulary, so a
	// bare summary would lose information.
	renderGroup(&b, otherHeading, other, true)

	return b.String()
}

func renderGroup(b *strings.Builder, heading string, commits []Commit, raw bool) {
	if len(commits) == 0 {
		return
	}

	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, c := range commits {
		b.WriteString("- ")
		if raw {
			b.WriteString(c.Subject)
		} else {
			b.WriteString(entryText(c))
		}
		if c.Hash != "" {
			fmt.Fprintf(b, " (%s)", c.Hash)
		}
		b.WriteString("\n")
		if c.Msg != nil && len(c.Msg.Refs) > 0 {
			fmt.Fprintf(b, "  - Refs: %s\n", strings.Join(c.Msg.Refs, ", "))
		}
	}
}

// entryText renders the bullet text for one commit: the parsed summary
// with an optional [scope] marker.
func entryText(c Commit) string {
	if c.Msg == nil || c.Msg.Type == "" {
		return c.Subject
	}
	if c.Msg.Scope != "" {
		return fmt.Sprintf("%s [%s]", c.Msg.Summary, c.Msg.Scope)
	}
	return c.Msg.Summary
}
