// Package refdata holds the static clinical reference tables the decision
// core evaluates against: symptom keyword lists, the drug-interaction table,
// allergy cross-reactivity groups, renal/hepatic clearance lists, and the
// SLA threshold table. Tables are built once at startup and injected into
// each engine; they are never mutated afterwards.
package refdata

import "strings"

// InteractionSeverity classifies a known drug-drug interaction.
type InteractionSeverity string

const (
	InteractionCritical InteractionSeverity = "critical"
	InteractionModerate InteractionSeverity = "moderate"
	InteractionMild     InteractionSeverity = "mild"
)

// InteractionEntry describes one known interaction partner of a drug.
type InteractionEntry struct {
	Partner     string
	Severity    InteractionSeverity
	Description string
}

// VitalTier holds the two-tier threshold rule for a single vital sign.
// Values at or beyond the critical bound score CriticalPoints and raise a
// critical flag; values at or beyond the warning bound score WarningPoints
// and raise a high flag.
type VitalTier struct {
	CriticalPoints int
	WarningPoints  int
}

// Tables is the complete set of reference data. Construct with Default and
// pass by pointer into the triage analyzer, safety checker, and SLA monitor.
type Tables struct {
	// Symptom keyword lists, all lowercase. Matched by substring against
	// normalized consultation text.
	CriticalSymptoms []string
	HighRiskSymptoms []string

	// Interactions maps a normalized drug name to its known interaction
	// partners.
	Interactions map[string][]InteractionEntry

	// AllergyGroups maps an allergy class name (e.g. "penicillin") to the
	// medications that cross-react with it.
	AllergyGroups map[string][]string

	// RenalCleared and HepaticMetabolized list drugs requiring dose
	// adjustment under organ impairment.
	RenalCleared       []string
	HepaticMetabolized []string

	// ComorbidityRisks maps a medical-history condition to symptom keywords
	// that make it triage-relevant.
	ComorbidityRisks map[string][]string

	// Vitals holds per-sign scoring tiers.
	Vitals struct {
		BloodPressure   VitalTier
		HeartRate       VitalTier
		Temperature     VitalTier
		SpO2            VitalTier
		RespiratoryRate VitalTier
	}

	// SLAThresholds maps an urgency level to the maximum acceptable
	// provider response time in minutes.
	SLAThresholds map[string]int

	// DefaultSLAThresholdMinutes applies when the urgency is missing or
	// unrecognized.
	DefaultSLAThresholdMinutes int
}

// SLAThresholdMinutes returns the response-time threshold for an urgency
// level. Unknown or empty urgency falls back to the default (medium) tier.
func (t *Tables) SLAThresholdMinutes(urgency string) int {
	if m, ok := t.SLAThresholds[strings.ToLower(strings.TrimSpace(urgency))]; ok {
		return m
	}
	return t.DefaultSLAThresholdMinutes
}

// InteractionsFor returns the interaction entries for a normalized
// medication name. Matching is bidirectional substring so that a dispensed
// name like "warfarin 5mg" still resolves to the "warfarin" entry. A miss
// returns nil: an unlisted drug simply has no known interactions.
func (t *Tables) InteractionsFor(name string) []InteractionEntry {
	if entries, ok := t.Interactions[name]; ok {
		return entries
	}
	for key, entries := range t.Interactions {
		if strings.Contains(name, key) || strings.Contains(key, name) {
			return entries
		}
	}
	return nil
}
