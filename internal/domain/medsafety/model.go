package medsafety

import (
	"encoding/json"
	"strings"
	"time"
)

// Medication is the canonical medication record. Legacy callers sometimes
// send a bare drug-name string; UnmarshalJSON coerces that form here at the
// boundary so rule logic never branches on shape.
type Medication struct {
	Name         string `json:"name"`
	Dose         string `json:"dose,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

func (m *Medication) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		m.Name = name
		return nil
	}
	type alias Medication
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = Medication(a)
	return nil
}

// MedicationFromString normalizes a bare-string medication reference.
func MedicationFromString(name string) Medication {
	return Medication{Name: strings.TrimSpace(name)}
}

// normalizedName returns the lowercase, trimmed name used by every matcher.
func (m Medication) normalizedName() string {
	return strings.ToLower(strings.TrimSpace(m.Name))
}

// PatientData is the physiology snapshot the checker evaluates against.
type PatientData struct {
	Age                *int         `json:"age,omitempty"`
	WeightKg           *float64     `json:"weight_kg,omitempty"`
	RenalFunction      string       `json:"renal_function,omitempty"`   // "normal" | "impaired"
	HepaticFunction    string       `json:"hepatic_function,omitempty"` // "normal" | "impaired"
	Pregnant           bool         `json:"pregnant,omitempty"`
	Breastfeeding      bool         `json:"breastfeeding,omitempty"`
	CurrentMedications []Medication `json:"current_medications,omitempty"`
	Allergies          AllergyList  `json:"allergies,omitempty"`
}

// AllergyList accepts either a JSON array of allergy strings or a single
// comma-separated string, normalized at the boundary.
type AllergyList []string

func (l *AllergyList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = ParseAllergies(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = ParseAllergies(list)
	return nil
}

// ParseAllergies accepts either a comma-separated string or an
// already-split list and returns normalized allergy strings.
func ParseAllergies(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []interface{}:
		for _, e := range t {
			if s, ok := e.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	var out []string
	for _, a := range raw {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// InteractionFinding records one drug-drug interaction match.
type InteractionFinding struct {
	Medication1    string `json:"medication1"`
	Medication2    string `json:"medication2"`
	Severity       string `json:"severity"` // critical | moderate | mild
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// InteractionFindings buckets findings by severity.
type InteractionFindings struct {
	Critical []InteractionFinding `json:"critical"`
	Moderate []InteractionFinding `json:"moderate"`
	Mild     []InteractionFinding `json:"mild"`
}

// AllergyConflict records a medication/allergy match.
type AllergyConflict struct {
	Medication         string `json:"medication"`
	Allergy            string `json:"allergy"`
	Type               string `json:"type"`     // direct | cross-reactive
	Severity           string `json:"severity"` // critical | high
	CrossReactiveGroup string `json:"cross_reactive_group,omitempty"`
	Recommendation     string `json:"recommendation"`
}

// DosageAssessment is the outcome of physiology-based dose validation for a
// single medication.
type DosageAssessment struct {
	Medication       string   `json:"medication"`
	Valid            bool     `json:"valid"`
	Warnings         []string `json:"warnings"`
	Recommendations  []string `json:"recommendations"`
	AdjustmentNeeded bool     `json:"adjustment_needed"`
	SuggestedDosage  string   `json:"suggested_dosage,omitempty"`
}

// Safety classifications for the aggregate verdict.
const (
	SafetySafe    = "safe"
	SafetyCaution = "caution"
	SafetyUnsafe  = "unsafe"
)

// SafetySummary carries the aggregate counts.
type SafetySummary struct {
	CriticalIssues     int `json:"critical_issues"`
	Warnings           int `json:"warnings"`
	MedicationsChecked int `json:"medications_checked"`
}

// SafetyVerdict is the aggregate outcome gating provider sign-off. It is
// recomputed on demand, never persisted by the core.
type SafetyVerdict struct {
	OverallSafety                   string               `json:"overall_safety"`
	RequiresPharmacistReview        bool                 `json:"requires_pharmacist_review"`
	RequiresProviderAcknowledgment  bool                 `json:"requires_provider_acknowledgment"`
	Interactions                    InteractionFindings  `json:"interactions"`
	AllergyConflicts                []AllergyConflict    `json:"allergy_conflicts"`
	DosageAssessments               []DosageAssessment   `json:"dosage_assessments"`
	PregnancyWarnings               []string             `json:"pregnancy_warnings"`
	Summary                         SafetySummary        `json:"summary"`
	Timestamp                       time.Time            `json:"timestamp"`
}
