package refdata

// Default builds the reference tables shipped with the platform. The data is
// deliberately small and static; it is versioned with the deployment, not
// editable at runtime.
func Default() *Tables {
	t := &Tables{
		CriticalSymptoms: []string{
			"chest pain",
			"difficulty breathing",
			"shortness of breath",
			"severe bleeding",
			"loss of consciousness",
			"stroke",
			"facial droop",
			"slurred speech",
			"suicidal",
			"anaphylaxis",
			"severe allergic reaction",
			"seizure",
			"coughing blood",
			"vomiting blood",
		},
		HighRiskSymptoms: []string{
			"severe pain",
			"high fever",
			"persistent vomiting",
			"severe headache",
			"vision loss",
			"numbness",
			"confusion",
			"dehydration",
			"severe abdominal pain",
			"irregular heartbeat",
			"fainting",
		},
		Interactions: map[string][]InteractionEntry{
			"warfarin": {
				{Partner: "aspirin", Severity: InteractionCritical, Description: "Greatly increased bleeding risk"},
				{Partner: "ibuprofen", Severity: InteractionCritical, Description: "Increased bleeding risk with NSAID co-therapy"},
				{Partner: "fluconazole", Severity: InteractionModerate, Description: "Fluconazole raises warfarin levels; INR monitoring required"},
			},
			"aspirin": {
				{Partner: "ibuprofen", Severity: InteractionModerate, Description: "Reduced antiplatelet effect and additive GI bleeding risk"},
				{Partner: "methotrexate", Severity: InteractionCritical, Description: "Reduced methotrexate clearance; toxicity risk"},
			},
			"lisinopril": {
				{Partner: "spironolactone", Severity: InteractionModerate, Description: "Risk of hyperkalemia"},
				{Partner: "potassium", Severity: InteractionModerate, Description: "Risk of hyperkalemia"},
				{Partner: "ibuprofen", Severity: InteractionMild, Description: "NSAIDs may blunt antihypertensive effect"},
			},
			"sildenafil": {
				{Partner: "nitroglycerin", Severity: InteractionCritical, Description: "Severe hypotension with nitrates"},
				{Partner: "isosorbide", Severity: InteractionCritical, Description: "Severe hypotension with nitrates"},
			},
			"simvastatin": {
				{Partner: "clarithromycin", Severity: InteractionCritical, Description: "Rhabdomyolysis risk via CYP3A4 inhibition"},
				{Partner: "amlodipine", Severity: InteractionModerate, Description: "Limit simvastatin dose with amlodipine"},
				{Partner: "grapefruit", Severity: InteractionMild, Description: "Grapefruit increases statin exposure"},
			},
			"metformin": {
				{Partner: "contrast dye", Severity: InteractionModerate, Description: "Lactic acidosis risk around iodinated contrast"},
			},
			"sertraline": {
				{Partner: "tramadol", Severity: InteractionCritical, Description: "Serotonin syndrome risk"},
				{Partner: "sumatriptan", Severity: InteractionModerate, Description: "Serotonin syndrome risk, monitor"},
			},
			"tramadol": {
				{Partner: "fluoxetine", Severity: InteractionCritical, Description: "Serotonin syndrome risk"},
			},
			"levothyroxine": {
				{Partner: "calcium", Severity: InteractionMild, Description: "Calcium reduces levothyroxine absorption; separate doses"},
				{Partner: "omeprazole", Severity: InteractionMild, Description: "Acid suppression reduces levothyroxine absorption"},
			},
			"digoxin": {
				{Partner: "amiodarone", Severity: InteractionCritical, Description: "Amiodarone raises digoxin levels; toxicity risk"},
				{Partner: "furosemide", Severity: InteractionModerate, Description: "Diuretic-induced hypokalemia potentiates digoxin"},
			},
		},
		AllergyGroups: map[string][]string{
			"penicillin": {
				"amoxicillin", "ampicillin", "augmentin", "dicloxacillin",
				"piperacillin", "cephalexin", "cefazolin",
			},
			"sulfa": {
				"sulfamethoxazole", "bactrim", "sulfasalazine", "sulfadiazine",
			},
			"nsaid": {
				"ibuprofen", "naproxen", "ketorolac", "diclofenac", "meloxicam",
				"celecoxib", "aspirin",
			},
			"opioid": {
				"codeine", "morphine", "oxycodone", "hydrocodone", "tramadol",
			},
		},
		RenalCleared: []string{
			"metformin", "gabapentin", "lisinopril", "atenolol", "digoxin",
			"vancomycin", "acyclovir", "allopurinol", "enoxaparin",
		},
		HepaticMetabolized: []string{
			"atorvastatin", "simvastatin", "acetaminophen", "diazepam",
			"carbamazepine", "valproate", "methotrexate", "rifampin",
		},
		ComorbidityRisks: map[string][]string{
			"diabetes":          {"wound", "infection", "fever", "numbness", "vision"},
			"heart disease":     {"chest pain", "shortness of breath", "palpitations", "fainting", "irregular heartbeat"},
			"copd":              {"shortness of breath", "cough", "wheezing", "difficulty breathing"},
			"asthma":            {"shortness of breath", "wheezing", "cough", "difficulty breathing"},
			"hypertension":      {"headache", "vision", "chest pain", "dizziness"},
			"immunocompromised": {"fever", "infection", "cough", "rash"},
			"kidney disease":    {"swelling", "fatigue", "nausea", "decreased urination"},
		},
		SLAThresholds: map[string]int{
			"urgent":  30,
			"high":    120,
			"medium":  480,
			"routine": 1440,
		},
		DefaultSLAThresholdMinutes: 480,
	}

	t.Vitals.BloodPressure = VitalTier{CriticalPoints: 30, WarningPoints: 15}
	t.Vitals.HeartRate = VitalTier{CriticalPoints: 25, WarningPoints: 12}
	t.Vitals.Temperature = VitalTier{CriticalPoints: 25, WarningPoints: 12}
	t.Vitals.SpO2 = VitalTier{CriticalPoints: 40, WarningPoints: 20}
	t.Vitals.RespiratoryRate = VitalTier{CriticalPoints: 30, WarningPoints: 15}

	return t
}
