// Package medsafety implements the medication safety checker: drug-drug
// interaction screening, allergy cross-reactivity, and physiology-based
// dosage validation, aggregated into a single verdict that gates provider
// sign-off.
//
// Unlike triage, every check here fails closed: an error anywhere blocks the
// prescribing workflow. A safety check that cannot complete must never be
// read as "safe".
package medsafety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecare/riskcore/internal/refdata"
)

// ErrNilPatient indicates the caller supplied no patient data. An empty
// medication or allergy list is valid input; a missing patient is not.
var ErrNilPatient = errors.New("medsafety: patient data is required")

// CheckError wraps an unexpected failure inside a sub-check.
type CheckError struct {
	Check string
	Cause interface{}
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("medsafety: %s check failed: %v", e.Check, e.Cause)
}

// Checker runs the safety sub-checks against the injected reference tables.
// All methods are side-effect-free functions of their inputs and the tables.
type Checker struct {
	tables *refdata.Tables
	logger zerolog.Logger
	now    func() time.Time
}

func NewChecker(tables *refdata.Tables, logger zerolog.Logger) *Checker {
	return &Checker{tables: tables, logger: logger, now: time.Now}
}

// PerformComprehensiveSafetyCheck runs the interaction, allergy, and dosage
// checks over every proposed medication and aggregates the results. The
// sub-checks are independent and run concurrently; the first error wins and
// the whole check fails.
func (c *Checker) PerformComprehensiveSafetyCheck(ctx context.Context, meds []Medication, patient *PatientData) (*SafetyVerdict, error) {
	if patient == nil {
		return nil, ErrNilPatient
	}

	var (
		interactions InteractionFindings
		conflicts    []AllergyConflict
		dosages      []DosageAssessment
	)

	errs := make(chan error, 3)

	go func() {
		var err error
		interactions, err = c.CheckDrugInteractions(meds, patient.CurrentMedications)
		errs <- err
	}()
	go func() {
		var err error
		conflicts, err = c.CheckAllergies(meds, patient.Allergies)
		errs <- err
	}()
	go func() {
		var err error
		dosages, err = c.validateAll(meds, patient)
		errs <- err
	}()

	for i := 0; i < 3; i++ {
		select {
		case err := <-errs:
			if err != nil {
				c.logger.Error().Err(err).Msg("safety sub-check failed, blocking prescribing decision")
				return nil, err
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	verdict := &SafetyVerdict{
		Interactions:      interactions,
		AllergyConflicts:  conflicts,
		DosageAssessments: dosages,
		Timestamp:         c.now(),
	}

	if patient.Pregnant {
		verdict.PregnancyWarnings = append(verdict.PregnancyWarnings,
			"patient is pregnant: verify pregnancy category for every proposed medication")
	}
	if patient.Breastfeeding {
		verdict.PregnancyWarnings = append(verdict.PregnancyWarnings,
			"patient is breastfeeding: verify lactation safety for every proposed medication")
	}

	c.aggregate(verdict, len(meds))
	return verdict, nil
}

func (c *Checker) validateAll(meds []Medication, patient *PatientData) ([]DosageAssessment, error) {
	assessments := make([]DosageAssessment, 0, len(meds))
	for _, med := range meds {
		a, err := c.ValidateDosage(med, patient)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}

// aggregate derives the overall classification:
//
//	unsafe  — any critical interaction or critical allergy conflict
//	caution — any moderate interaction, high-severity allergy conflict,
//	          or dosage adjustment, when not unsafe
//	safe    — otherwise
func (c *Checker) aggregate(v *SafetyVerdict, medsChecked int) {
	criticalAllergies, highAllergies := 0, 0
	for _, a := range v.AllergyConflicts {
		switch a.Severity {
		case "critical":
			criticalAllergies++
		case "high":
			highAllergies++
		}
	}

	adjustments := 0
	dosageWarnings := 0
	for _, d := range v.DosageAssessments {
		if d.AdjustmentNeeded {
			adjustments++
		}
		dosageWarnings += len(d.Warnings)
	}

	critical := len(v.Interactions.Critical) + criticalAllergies

	switch {
	case critical > 0:
		v.OverallSafety = SafetyUnsafe
	case len(v.Interactions.Moderate) > 0 || highAllergies > 0 || adjustments > 0:
		v.OverallSafety = SafetyCaution
	default:
		v.OverallSafety = SafetySafe
	}

	v.RequiresPharmacistReview = critical > 0 || adjustments > 0
	v.RequiresProviderAcknowledgment = v.OverallSafety != SafetySafe

	v.Summary = SafetySummary{
		CriticalIssues:     critical,
		Warnings:           len(v.Interactions.Moderate) + highAllergies + dosageWarnings,
		MedicationsChecked: medsChecked,
	}
}
