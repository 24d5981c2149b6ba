package rules

import (
	"github.com/decree-tools/decree/internal/artifact"
	"github.com/decree-tools/decree/internal/report"
)

// ADRIndex builds the set of known ADR ids from parsed ADR documents.
// Documents without an id field are skipped; the rule validator already
// flags those.
func ADRIndex(docs []*artifact.Document) map[string]bool {
	index := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if id, ok := doc.Field("id"); ok && id != "" {
			index[id] = true
		}
	}
	return index
}

// CheckEvidenceRefs verifies that every evidence document's adr field
// names an ADR that actually exists. Evidence without an adr field is
// left to the frontmatter rules; this check only judges dangling refs.
func CheckEvidenceRefs(docs []*artifact.Document, adrs map[string]bool) []report.Violation {
	var out []report.Violation
	for _, doc := range docs {
		ref, ok := doc.Field("adr")
		if !ok || ref == "" {
			continue
		}
		if !adrs[ref] {
			out = append(out, report.Violation{
				Path:    doc.Path,
				Rule:    RuleEvidenceRef,
				Message: "references unknown ADR " + ref,
			})
		}
	}
	return out
}
