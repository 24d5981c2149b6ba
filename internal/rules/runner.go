package rules

import (
	"fmt"

	"github.com/decree-tools/decree/internal/manifest"
	"github.com/decree-tools/decree/internal/report"
)

// Artifact types with special cross-reference behavior.
const (
	ADRType      = "adr"
	EvidenceType = "evidence"
)

// CheckArtifacts validates the project's configured artifact types and
// returns a merged report. only narrows the run to a single type; empty
// checks everything the manifest declares.
//
// Evidence documents are cross-checked against the ADR id index. When
// evidence is checked on its own, the ADR set is still scanned to build
// the index, but ADR rule violations stay out of the report.
func CheckArtifacts(root string, m *manifest.Manifest, only string) (*report.Report, error) {
	types := m.Config.Artifacts
	if only != "" {
		if !contains(types, only) {
			return nil, fmt.Errorf("artifact type %q is not declared in the manifest (have: %v)", only, types)
		}
		types = []string{only}
	}

	merged := &report.Report{Kind: "artifacts"}
	if only != "" {
		merged.Kind = only
	}

	var adrIndex map[string]bool

	for _, typ := range types {
		rs, err := manifest.LoadRuleSet(root, m.Config.Dir, typ)
		if err != nil {
			return nil, err
		}
		rep, docs, err := CheckType(root, *rs)
		if err != nil {
			return nil, err
		}
		merged.Merge(rep)

		switch typ {
		case ADRType:
			adrIndex = ADRIndex(docs)
		case EvidenceType:
			if adrIndex == nil {
				adrIndex, err = buildADRIndex(root, m)
				if err != nil {
					return nil, err
				}
			}
			merged.Violations = append(merged.Violations, CheckEvidenceRefs(docs, adrIndex)...)
		}
	}

	return merged, nil
}

// buildADRIndex scans the ADR set for ids without contributing ADR rule
// violations. Used when evidence is checked in isolation, or when the
// manifest lists evidence before adr. Projects that declare no adr type
// get an empty index, so every evidence ref dangles by definition.
func buildADRIndex(root string, m *manifest.Manifest) (map[string]bool, error) {
	if !contains(m.Config.Artifacts, ADRType) {
		return map[string]bool{}, nil
	}
	rs, err := manifest.LoadRuleSet(root, m.Config.Dir, ADRType)
	if err != nil {
		return nil, err
	}
	_, docs, err := CheckType(root, *rs)
	if err != nil {
		return nil, err
	}
	return ADRIndex(docs), nil
}
