package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeForm() *CaseForm {
	return &CaseForm{
		Timeline:            "Symptoms started around two years ago",
		Childhood:           "Healthy childhood, no major complaints",
		MajorIllnesses:      "Typhoid in 2015",
		MainSymptoms:        "Recurring migraine with aura",
		SymptomLocation:     "Left temple",
		SymptomDuration:     "Two years",
		DailyBasis:          "Worse in the evenings",
		FamilyHealthSummary: "Mother hypertensive",
	}
}

func TestCaseFormComplete(t *testing.T) {
	form := completeForm()
	assert.True(t, form.Complete())
	assert.Empty(t, form.MissingFields())
}

func TestCaseFormOptionalFieldsDoNotCount(t *testing.T) {
	form := completeForm()
	form.Hobbies = ""
	form.SurgicalHistory = ""
	form.CurrentMedications = ""
	form.SymptomsBetter = ""
	form.SymptomsWorse = ""
	form.StressFactors = StressFactors{}

	assert.True(t, form.Complete())
}

func TestCaseFormBlankRequiredField(t *testing.T) {
	form := completeForm()
	form.SymptomDuration = "   "

	assert.False(t, form.Complete())
	assert.Equal(t, []string{"symptom_duration"}, form.MissingFields())
}

func TestCaseFormMissingFieldsKeepFormOrder(t *testing.T) {
	form := completeForm()
	form.Timeline = ""
	form.DailyBasis = ""
	form.FamilyHealthSummary = ""

	assert.Equal(t, []string{"timeline", "daily_basis", "family_health_summary"}, form.MissingFields())
}

func TestCaseFormEmpty(t *testing.T) {
	form := &CaseForm{}
	assert.True(t, form.Empty())

	form.StressFactors.Professional = true
	assert.False(t, form.Empty())

	form = &CaseForm{Hobbies: "reading"}
	assert.False(t, form.Empty())
	assert.False(t, form.Complete())
}
