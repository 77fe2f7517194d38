package medsafety

// CheckAllergies tests every medication against the patient's allergy list:
// first for a direct name match, then for cross-reactivity through the known
// allergy groups. Fails closed on internal error.
func (c *Checker) CheckAllergies(meds []Medication, allergies []string) (conflicts []AllergyConflict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CheckError{Check: "allergies", Cause: r}
		}
	}()

	// In-process callers may pass raw allergy strings; normalize here, not
	// just at the JSON boundary.
	allergies = ParseAllergies(allergies)

	for _, med := range meds {
		name := med.normalizedName()
		if name == "" {
			continue
		}
		for _, allergy := range allergies {
			if substringMatch(name, allergy) {
				conflicts = append(conflicts, AllergyConflict{
					Medication:     name,
					Allergy:        allergy,
					Type:           "direct",
					Severity:       "critical",
					Recommendation: "Documented allergy to this medication. Do not prescribe; select an alternative.",
				})
				continue
			}
			conflicts = append(conflicts, c.crossReactive(name, allergy)...)
		}
	}
	return conflicts, nil
}

// crossReactive checks whether the allergy names a known group and, if so,
// whether the medication appears in that group's cross-reactive list.
func (c *Checker) crossReactive(medName, allergy string) []AllergyConflict {
	var conflicts []AllergyConflict
	for group, members := range c.tables.AllergyGroups {
		if !substringMatch(allergy, group) {
			continue
		}
		for _, member := range members {
			if substringMatch(medName, member) {
				conflicts = append(conflicts, AllergyConflict{
					Medication:         medName,
					Allergy:            allergy,
					Type:               "cross-reactive",
					Severity:           "high",
					CrossReactiveGroup: group,
					Recommendation:     "Possible cross-reactivity with documented " + group + " allergy. Verify tolerance history before prescribing.",
				})
				break
			}
		}
	}
	return conflicts
}
