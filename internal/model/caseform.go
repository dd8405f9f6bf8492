package model

import "strings"

// StressFactors are the checkbox group on the intake questionnaire. They are
// informational only and never counted towards completion.
type StressFactors struct {
	Family       bool `json:"family"`
	Professional bool `json:"professional"`
	Personal     bool `json:"personal"`
	AnyOther     bool `json:"any_other"`
}

// CaseForm holds the patient intake questionnaire answers. Field names match
// the clinic's paper form, grouped into the four wizard steps.
type CaseForm struct {
	// Step 1: background
	Timeline      string        `json:"timeline"`
	Childhood     string        `json:"childhood"`
	Hobbies       string        `json:"hobbies"`
	StressFactors StressFactors `json:"stress_factors"`

	// Step 2: medical history
	MajorIllnesses     string `json:"major_illnesses"`
	SurgicalHistory    string `json:"surgical_history"`
	CurrentMedications string `json:"current_medications"`

	// Step 3: symptoms
	MainSymptoms    string `json:"main_symptoms"`
	SymptomLocation string `json:"symptom_location"`
	SymptomDuration string `json:"symptom_duration"`
	SymptomsBetter  string `json:"symptoms_better"`
	SymptomsWorse   string `json:"symptoms_worse"`
	DailyBasis      string `json:"daily_basis"`

	// Step 4: family history
	FamilyHealthSummary string `json:"family_health_summary"`
}

// requiredFields returns the answers completion is judged on, in form order.
func (f *CaseForm) requiredFields() []string {
	return []string{
		f.Timeline,
		f.Childhood,
		f.MajorIllnesses,
		f.MainSymptoms,
		f.SymptomLocation,
		f.SymptomDuration,
		f.DailyBasis,
		f.FamilyHealthSummary,
	}
}

// Complete reports whether every required answer is non-blank after trimming.
func (f *CaseForm) Complete() bool {
	for _, v := range f.requiredFields() {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// MissingFields lists the required answers still blank, in form order.
func (f *CaseForm) MissingFields() []string {
	names := []string{
		"timeline", "childhood", "major_illnesses", "main_symptoms",
		"symptom_location", "symptom_duration", "daily_basis", "family_health_summary",
	}
	var missing []string
	for i, v := range f.requiredFields() {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, names[i])
		}
	}
	return missing
}

// Empty reports whether nothing at all was entered.
func (f *CaseForm) Empty() bool {
	for _, v := range []string{
		f.Timeline, f.Childhood, f.Hobbies,
		f.MajorIllnesses, f.SurgicalHistory, f.CurrentMedications,
		f.MainSymptoms, f.SymptomLocation, f.SymptomDuration,
		f.SymptomsBetter, f.SymptomsWorse, f.DailyBasis,
		f.FamilyHealthSummary,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	sf := f.StressFactors
	return !sf.Family && !sf.Professional && !sf.Personal && !sf.AnyOther
}
