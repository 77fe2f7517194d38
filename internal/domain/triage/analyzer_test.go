package triage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/telecare/riskcore/internal/refdata"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(refdata.Default(), zerolog.Nop())
}

func ptrInt(i int) *int           { return &i }
func ptrFloat(f float64) *float64 { return &f }

func TestAnalyze_CriticalSymptomForcesUrgent(t *testing.T) {
	a := newTestAnalyzer()

	inputs := []ConsultationInput{
		{ChiefComplaint: "crushing chest pain since this morning"},
		{ChiefComplaint: "cold", Symptoms: "now has difficulty breathing"},
		{ChiefComplaint: "episode of loss of consciousness"},
	}
	for _, in := range inputs {
		res := a.Analyze(in)
		if res.Urgency != UrgencyUrgent {
			t.Errorf("input %q: urgency = %s, want urgent", in.ChiefComplaint, res.Urgency)
		}
		if !res.RequiresSynchronousVisit {
			t.Errorf("input %q: expected synchronous visit requirement", in.ChiefComplaint)
		}
		if res.RiskLevel != RiskCritical {
			t.Errorf("input %q: risk = %s, want critical", in.ChiefComplaint, res.RiskLevel)
		}
		if !res.HasCriticalFlag() {
			t.Errorf("input %q: expected a critical red flag", in.ChiefComplaint)
		}
	}
}

func TestAnalyze_ScoreMonotonicInKeywords(t *testing.T) {
	a := newTestAnalyzer()

	text := ""
	prev := -1
	for _, kw := range []string{"severe headache", "confusion", "persistent vomiting", "chest pain"} {
		text = text + " " + kw
		res := a.Analyze(ConsultationInput{Symptoms: text})
		if res.Score < prev {
			t.Fatalf("score decreased from %d to %d after adding %q", prev, res.Score, kw)
		}
		prev = res.Score
	}
}

func TestAnalyze_VitalTiers(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		name     string
		vitals   Vitals
		wantSev  Severity
		wantType string
	}{
		{"bp critical", Vitals{SystolicBP: ptrInt(190), DiastolicBP: ptrInt(110)}, SeverityCritical, "vital_blood_pressure"},
		{"bp warning", Vitals{SystolicBP: ptrInt(165), DiastolicBP: ptrInt(95)}, SeverityHigh, "vital_blood_pressure"},
		{"hr critical", Vitals{HeartRate: ptrInt(140)}, SeverityCritical, "vital_heart_rate"},
		{"hr warning", Vitals{HeartRate: ptrInt(115)}, SeverityHigh, "vital_heart_rate"},
		{"temp critical", Vitals{Temperature: ptrFloat(40.2)}, SeverityCritical, "vital_temperature"},
		{"temp warning", Vitals{Temperature: ptrFloat(38.9)}, SeverityHigh, "vital_temperature"},
		{"spo2 critical", Vitals{SpO2: ptrInt(85)}, SeverityCritical, "vital_spo2"},
		{"spo2 warning", Vitals{SpO2: ptrInt(91)}, SeverityHigh, "vital_spo2"},
		{"resp critical", Vitals{RespiratoryRate: ptrInt(32)}, SeverityCritical, "vital_respiratory_rate"},
		{"resp warning", Vitals{RespiratoryRate: ptrInt(25)}, SeverityHigh, "vital_respiratory_rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := a.Analyze(ConsultationInput{ChiefComplaint: "follow up", Vitals: &tc.vitals})
			found := false
			for _, f := range res.RedFlags {
				if f.Type == tc.wantType && f.Severity == tc.wantSev {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s flag of severity %s, got %+v", tc.wantType, tc.wantSev, res.RedFlags)
			}
			if res.Score == 0 {
				t.Error("abnormal vital should contribute to the score")
			}
		})
	}
}

func TestAnalyze_NormalVitalsScoreNothing(t *testing.T) {
	a := newTestAnalyzer()
	res := a.Analyze(ConsultationInput{
		ChiefComplaint: "medication refill",
		Vitals: &Vitals{
			SystolicBP:      ptrInt(120),
			DiastolicBP:     ptrInt(80),
			HeartRate:       ptrInt(72),
			Temperature:     ptrFloat(36.8),
			SpO2:            ptrInt(98),
			RespiratoryRate: ptrInt(14),
		},
	})
	if res.Score != 0 {
		t.Errorf("score = %d, want 0", res.Score)
	}
	if res.RiskLevel != RiskLow || res.Urgency != UrgencyRoutine {
		t.Errorf("got %s/%s, want low/routine", res.RiskLevel, res.Urgency)
	}
	if res.RequiresSynchronousVisit {
		t.Error("routine consultation should not require a synchronous visit")
	}
}

func TestAnalyze_AgeFactors(t *testing.T) {
	a := newTestAnalyzer()

	base := a.Analyze(ConsultationInput{Symptoms: "high fever"})
	infant := a.Analyze(ConsultationInput{Symptoms: "high fever", Age: ptrInt(1)})
	geriatric := a.Analyze(ConsultationInput{Symptoms: "high fever", Age: ptrInt(80)})
	adult := a.Analyze(ConsultationInput{Symptoms: "high fever", Age: ptrInt(40)})

	if infant.Score <= base.Score {
		t.Errorf("infant score %d should exceed base %d", infant.Score, base.Score)
	}
	if geriatric.Score <= base.Score {
		t.Errorf("geriatric score %d should exceed base %d", geriatric.Score, base.Score)
	}
	if adult.Score != base.Score {
		t.Errorf("adult score %d should equal base %d", adult.Score, base.Score)
	}
}

func TestAnalyze_HistoryRelevance(t *testing.T) {
	a := newTestAnalyzer()

	relevant := a.Analyze(ConsultationInput{
		Symptoms:       "shortness of breath and wheezing",
		MedicalHistory: []string{"COPD"},
	})
	irrelevant := a.Analyze(ConsultationInput{
		Symptoms:       "shortness of breath and wheezing",
		MedicalHistory: []string{"kidney disease"},
	})
	if relevant.Score <= irrelevant.Score {
		t.Errorf("relevant comorbidity score %d should exceed irrelevant %d",
			relevant.Score, irrelevant.Score)
	}
}

func TestAnalyze_SLAThresholdByUrgency(t *testing.T) {
	a := newTestAnalyzer()

	urgent := a.Analyze(ConsultationInput{ChiefComplaint: "chest pain"})
	if urgent.SLAThresholdMinutes != 30 {
		t.Errorf("urgent threshold = %d, want 30", urgent.SLAThresholdMinutes)
	}

	routine := a.Analyze(ConsultationInput{ChiefComplaint: "prescription refill"})
	if routine.SLAThresholdMinutes != 1440 {
		t.Errorf("routine threshold = %d, want 1440", routine.SLAThresholdMinutes)
	}
}

func TestAnalyze_FailSafeOnInternalError(t *testing.T) {
	// A nil table set makes the computation panic; the analyzer must degrade
	// to a high-risk manual-review result instead of propagating.
	a := NewAnalyzer(nil, zerolog.Nop())

	res := a.Analyze(ConsultationInput{ChiefComplaint: "sore throat"})

	if res.RiskLevel != RiskHigh {
		t.Errorf("risk = %s, want high", res.RiskLevel)
	}
	if res.Urgency != UrgencyHigh {
		t.Errorf("urgency = %s, want high", res.Urgency)
	}
	if res.RiskLevel == RiskLow || res.Urgency == UrgencyRoutine {
		t.Fatal("fail-safe result must never be low/routine")
	}
	if len(res.RedFlags) != 1 || res.RedFlags[0].Type != "triage_error" {
		t.Errorf("expected a single triage_error flag, got %+v", res.RedFlags)
	}
	if !strings.Contains(res.RedFlags[0].Description, "manual") {
		t.Errorf("fail-safe flag should direct to manual review: %q", res.RedFlags[0].Description)
	}
}

func TestAnalyze_UncappedScoreAccumulates(t *testing.T) {
	a := newTestAnalyzer()

	var sb []string
	for _, kw := range refdata.Default().CriticalSymptoms {
		sb = append(sb, kw)
	}
	res := a.Analyze(ConsultationInput{Symptoms: strings.Join(sb, ", ")})
	want := 50 * len(refdata.Default().CriticalSymptoms)
	if res.Score != want {
		t.Errorf("score = %d, want %d (%s)", res.Score, want, fmt.Sprint(len(sb)))
	}
}
