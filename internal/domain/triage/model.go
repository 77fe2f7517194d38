package triage

import "time"

// Severity grades a red flag.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
)

// RiskLevel is the overall patient risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Urgency drives the SLA response-time clock.
type Urgency string

const (
	UrgencyRoutine Urgency = "routine"
	UrgencyMedium  Urgency = "medium"
	UrgencyHigh    Urgency = "high"
	UrgencyUrgent  Urgency = "urgent"
)

// Vitals holds the optional vital signs reported at intake. Absent readings
// are nil and contribute nothing to the score.
type Vitals struct {
	SystolicBP      *int     `json:"systolic_bp,omitempty"`
	DiastolicBP     *int     `json:"diastolic_bp,omitempty"`
	HeartRate       *int     `json:"heart_rate,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	SpO2            *int     `json:"spo2,omitempty"`
	RespiratoryRate *int     `json:"respiratory_rate,omitempty"`
}

// ConsultationInput is the transient intake snapshot the analyzer consumes.
// The core never stores it.
type ConsultationInput struct {
	ChiefComplaint string   `json:"chief_complaint"`
	Symptoms       string   `json:"symptoms"`
	Vitals         *Vitals  `json:"vitals,omitempty"`
	Age            *int     `json:"age,omitempty"`
	MedicalHistory []string `json:"medical_history,omitempty"`
}

// RedFlag is a discrete elevated-risk finding.
type RedFlag struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// TriageResult is the append-only outcome of one analysis. It is created
// once per consultation submission and never mutated afterwards.
type TriageResult struct {
	Score                    int       `json:"score"`
	RiskLevel                RiskLevel `json:"risk_level"`
	Urgency                  Urgency   `json:"urgency"`
	RedFlags                 []RedFlag `json:"red_flags"`
	RequiresSynchronousVisit bool      `json:"requires_synchronous_visit"`
	SLAThresholdMinutes      int       `json:"sla_threshold_minutes"`
	CompletedAt              time.Time `json:"completed_at"`
}

// HasCriticalFlag reports whether any red flag carries critical severity.
func (r *TriageResult) HasCriticalFlag() bool {
	for _, f := range r.RedFlags {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
