package medsafety

import (
	"strings"

	"github.com/telecare/riskcore/internal/refdata"
)

var interactionRecommendations = map[refdata.InteractionSeverity]string{
	refdata.InteractionCritical: "Do not co-prescribe. Select an alternative agent or obtain specialist approval before proceeding.",
	refdata.InteractionModerate: "Co-prescribing requires close monitoring. Review dosing and schedule follow-up labs as indicated.",
	refdata.InteractionMild:     "Counsel the patient on timing and possible reduced effect. No change usually required.",
}

// CheckDrugInteractions evaluates every proposed medication against the
// patient's current medications and against the other proposed medications.
// Unknown drugs produce no findings. The check fails closed: it returns an
// error rather than a partial result.
func (c *Checker) CheckDrugInteractions(newMeds, currentMeds []Medication) (findings InteractionFindings, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CheckError{Check: "drug_interactions", Cause: r}
		}
	}()

	seen := make(map[string]bool)

	for i, med := range newMeds {
		name := med.normalizedName()
		if name == "" {
			continue
		}
		for _, other := range currentMeds {
			c.matchPair(&findings, seen, name, other.normalizedName())
		}
		// Proposed medications are also checked pairwise against each other.
		for _, other := range newMeds[i+1:] {
			c.matchPair(&findings, seen, name, other.normalizedName())
		}
	}
	return findings, nil
}

// matchPair consults both medications' table entries. Interaction rows are
// directional (warfarin lists aspirin, not the reverse), so a pair must be
// looked up from both sides or the verdict would depend on which drug is
// being proposed.
func (c *Checker) matchPair(findings *InteractionFindings, seen map[string]bool, name, other string) {
	if other == "" || other == name {
		return
	}
	c.matchEntries(findings, seen, name, other, c.tables.InteractionsFor(name))
	c.matchEntries(findings, seen, other, name, c.tables.InteractionsFor(other))
}

// matchEntries records a finding for every interaction entry whose partner
// matches other by bidirectional substring. A medication pair is recorded at
// most once regardless of lookup direction.
func (c *Checker) matchEntries(findings *InteractionFindings, seen map[string]bool, name, other string, entries []refdata.InteractionEntry) {
	for _, e := range entries {
		if !substringMatch(other, e.Partner) {
			continue
		}
		key := name + "|" + other
		if other < name {
			key = other + "|" + name
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		f := InteractionFinding{
			Medication1:    name,
			Medication2:    other,
			Severity:       string(e.Severity),
			Description:    e.Description,
			Recommendation: interactionRecommendations[e.Severity],
		}
		switch e.Severity {
		case refdata.InteractionCritical:
			findings.Critical = append(findings.Critical, f)
		case refdata.InteractionModerate:
			findings.Moderate = append(findings.Moderate, f)
		default:
			findings.Mild = append(findings.Mild, f)
		}
	}
}

// substringMatch reports whether either string contains the other. A match
// in either direction counts, so "aspirin 81mg" matches "aspirin" and vice
// versa.
func substringMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
