package medsafety

const lowBodyWeightKg = 40.0

// ValidateDosage applies the physiology rule table to a single medication.
// Every triggered rule accumulates independently; AdjustmentNeeded is set
// only by organ-impairment rules. A nil patient is an input error.
func (c *Checker) ValidateDosage(med Medication, patient *PatientData) (assessment DosageAssessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CheckError{Check: "dosage", Cause: r}
		}
	}()

	if patient == nil {
		return DosageAssessment{}, ErrNilPatient
	}

	assessment = DosageAssessment{
		Medication: med.normalizedName(),
		Valid:      true,
		Warnings:   []string{},
	}

	if patient.Age != nil {
		switch {
		case *patient.Age < 18:
			assessment.Warnings = append(assessment.Warnings,
				"pediatric patient: verify weight-based dosing against pediatric reference")
		case *patient.Age >= 65:
			assessment.Warnings = append(assessment.Warnings,
				"geriatric patient: consider reduced starting dose")
			assessment.Recommendations = append(assessment.Recommendations,
				"start low, titrate slowly, and schedule early follow-up")
		}
	}

	if patient.WeightKg != nil && *patient.WeightKg < lowBodyWeightKg {
		assessment.Warnings = append(assessment.Warnings,
			"low body weight: standard adult dosing may be excessive")
	}

	name := med.normalizedName()

	if patient.RenalFunction == "impaired" && onList(name, c.tables.RenalCleared) {
		assessment.AdjustmentNeeded = true
		assessment.Warnings = append(assessment.Warnings,
			"renally cleared medication in a patient with impaired renal function")
		assessment.Recommendations = append(assessment.Recommendations,
			"adjust dose for renal impairment; confirm creatinine clearance before dispensing")
		assessment.SuggestedDosage = "reduced per renal dosing protocol"
	}

	if patient.HepaticFunction == "impaired" && onList(name, c.tables.HepaticMetabolized) {
		assessment.AdjustmentNeeded = true
		assessment.Warnings = append(assessment.Warnings,
			"hepatically metabolized medication in a patient with impaired hepatic function")
		assessment.Recommendations = append(assessment.Recommendations,
			"adjust dose for hepatic impairment; review liver function panel")
		if assessment.SuggestedDosage == "" {
			assessment.SuggestedDosage = "reduced per hepatic dosing protocol"
		}
	}

	assessment.Valid = len(assessment.Warnings) == 0
	return assessment, nil
}

func onList(name string, list []string) bool {
	for _, entry := range list {
		if substringMatch(name, entry) {
			return true
		}
	}
	return false
}
