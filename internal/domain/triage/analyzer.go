package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecare/riskcore/internal/refdata"
)

// Analyzer scores consultation intake data against the static reference
// tables. Analyze is pure and deterministic given the tables.
type Analyzer struct {
	tables *refdata.Tables
	logger zerolog.Logger
	now    func() time.Time
}

func NewAnalyzer(tables *refdata.Tables, logger zerolog.Logger) *Analyzer {
	return &Analyzer{tables: tables, logger: logger, now: time.Now}
}

// Analyze computes the triage result for one consultation. It never returns
// an error: a triage failure must not block submission or silently downgrade
// a patient, so any internal failure degrades to a high-risk result carrying
// a manual-review flag.
func (a *Analyzer) Analyze(input ConsultationInput) (result TriageResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Interface("panic", r).
				Msg("triage computation failed, returning fail-safe high-risk result")
			result = a.failSafeResult()
		}
	}()
	return a.compute(input)
}

func (a *Analyzer) compute(input ConsultationInput) TriageResult {
	var (
		score int
		flags []RedFlag
	)

	text := strings.ToLower(input.ChiefComplaint + " " + input.Symptoms)

	for _, kw := range a.tables.CriticalSymptoms {
		if strings.Contains(text, kw) {
			score += 50
			flags = append(flags, RedFlag{
				Type:        "critical_symptom",
				Description: fmt.Sprintf("critical symptom reported: %s", kw),
				Severity:    SeverityCritical,
			})
		}
	}
	for _, kw := range a.tables.HighRiskSymptoms {
		if strings.Contains(text, kw) {
			score += 25
			flags = append(flags, RedFlag{
				Type:        "high_risk_symptom",
				Description: fmt.Sprintf("high-risk symptom reported: %s", kw),
				Severity:    SeverityHigh,
			})
		}
	}

	vs, vf := a.scoreVitals(input.Vitals)
	score += vs
	flags = append(flags, vf...)

	as, af := a.scoreAge(input.Age)
	score += as
	flags = append(flags, af...)

	score += a.scoreHistory(input.MedicalHistory, text)

	risk, urgency := a.classify(score, flags)

	return TriageResult{
		Score:                    score,
		RiskLevel:                risk,
		Urgency:                  urgency,
		RedFlags:                 flags,
		RequiresSynchronousVisit: hasCritical(flags),
		SLAThresholdMinutes:      a.tables.SLAThresholdMinutes(string(urgency)),
		CompletedAt:              a.now(),
	}
}

func (a *Analyzer) scoreVitals(v *Vitals) (int, []RedFlag) {
	if v == nil {
		return 0, nil
	}
	var (
		score int
		flags []RedFlag
	)
	add := func(tier refdata.VitalTier, critical bool, flagType, desc string) {
		if critical {
			score += tier.CriticalPoints
			flags = append(flags, RedFlag{Type: flagType, Description: desc, Severity: SeverityCritical})
		} else {
			score += tier.WarningPoints
			flags = append(flags, RedFlag{Type: flagType, Description: desc, Severity: SeverityHigh})
		}
	}

	if v.SystolicBP != nil || v.DiastolicBP != nil {
		sys, dia := 0, 0
		if v.SystolicBP != nil {
			sys = *v.SystolicBP
		}
		if v.DiastolicBP != nil {
			dia = *v.DiastolicBP
		}
		switch {
		case sys >= 180 || dia >= 120 || (v.SystolicBP != nil && sys <= 80):
			add(a.tables.Vitals.BloodPressure, true, "vital_blood_pressure",
				fmt.Sprintf("blood pressure critically abnormal: %d/%d", sys, dia))
		case sys >= 160 || dia >= 100 || (v.SystolicBP != nil && sys <= 90):
			add(a.tables.Vitals.BloodPressure, false, "vital_blood_pressure",
				fmt.Sprintf("blood pressure abnormal: %d/%d", sys, dia))
		}
	}

	if v.HeartRate != nil {
		hr := *v.HeartRate
		switch {
		case hr >= 130 || hr <= 40:
			add(a.tables.Vitals.HeartRate, true, "vital_heart_rate",
				fmt.Sprintf("heart rate critically abnormal: %d bpm", hr))
		case hr >= 110 || hr <= 50:
			add(a.tables.Vitals.HeartRate, false, "vital_heart_rate",
				fmt.Sprintf("heart rate abnormal: %d bpm", hr))
		}
	}

	if v.Temperature != nil {
		temp := *v.Temperature
		switch {
		case temp >= 40.0 || temp <= 35.0:
			add(a.tables.Vitals.Temperature, true, "vital_temperature",
				fmt.Sprintf("temperature critically abnormal: %.1f°C", temp))
		case temp >= 38.5:
			add(a.tables.Vitals.Temperature, false, "vital_temperature",
				fmt.Sprintf("fever: %.1f°C", temp))
		}
	}

	if v.SpO2 != nil {
		spo2 := *v.SpO2
		switch {
		case spo2 < 88:
			add(a.tables.Vitals.SpO2, true, "vital_spo2",
				fmt.Sprintf("oxygen saturation critically low: %d%%", spo2))
		case spo2 < 92:
			add(a.tables.Vitals.SpO2, false, "vital_spo2",
				fmt.Sprintf("oxygen saturation low: %d%%", spo2))
		}
	}

	if v.RespiratoryRate != nil {
		rr := *v.RespiratoryRate
		switch {
		case rr >= 30 || rr <= 8:
			add(a.tables.Vitals.RespiratoryRate, true, "vital_respiratory_rate",
				fmt.Sprintf("respiratory rate critically abnormal: %d/min", rr))
		case rr >= 24:
			add(a.tables.Vitals.RespiratoryRate, false, "vital_respiratory_rate",
				fmt.Sprintf("respiratory rate elevated: %d/min", rr))
		}
	}

	return score, flags
}

func (a *Analyzer) scoreAge(age *int) (int, []RedFlag) {
	if age == nil {
		return 0, nil
	}
	switch {
	case *age < 2:
		return 20, []RedFlag{{
			Type:        "age_factor",
			Description: "infant patient, lower physiological reserve",
			Severity:    SeverityHigh,
		}}
	case *age < 18:
		return 10, nil
	case *age >= 75:
		return 20, []RedFlag{{
			Type:        "age_factor",
			Description: "advanced age, elevated deterioration risk",
			Severity:    SeverityHigh,
		}}
	case *age >= 65:
		return 10, nil
	}
	return 0, nil
}

// scoreHistory adds points for comorbidities that are relevant to the
// reported symptoms. Irrelevant history contributes nothing.
func (a *Analyzer) scoreHistory(history []string, text string) int {
	score := 0
	for _, condition := range history {
		related, ok := a.tables.ComorbidityRisks[strings.ToLower(strings.TrimSpace(condition))]
		if !ok {
			continue
		}
		for _, kw := range related {
			if strings.Contains(text, kw) {
				score += 15
				break
			}
		}
	}
	return score
}

// classify maps the total score and worst flag severity to a risk level and
// urgency. A critical flag floors the outcome at critical/urgent regardless
// of the numeric score.
func (a *Analyzer) classify(score int, flags []RedFlag) (RiskLevel, Urgency) {
	if hasCritical(flags) {
		return RiskCritical, UrgencyUrgent
	}
	switch {
	case score >= 90:
		return RiskCritical, UrgencyUrgent
	case score >= 50:
		return RiskHigh, UrgencyHigh
	case score >= 25:
		return RiskModerate, UrgencyMedium
	default:
		return RiskLow, UrgencyRoutine
	}
}

// failSafeResult is the degraded outcome when scoring itself fails. It never
// reports low risk: the consultation is routed to high-priority manual
// review instead.
func (a *Analyzer) failSafeResult() TriageResult {
	return TriageResult{
		Score:     0,
		RiskLevel: RiskHigh,
		Urgency:   UrgencyHigh,
		RedFlags: []RedFlag{{
			Type:        "triage_error",
			Description: "automated triage failed; manual clinical review required",
			Severity:    SeverityHigh,
		}},
		RequiresSynchronousVisit: false,
		SLAThresholdMinutes:      120,
		CompletedAt:              a.now(),
	}
}

func hasCritical(flags []RedFlag) bool {
	for _, f := range flags {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
