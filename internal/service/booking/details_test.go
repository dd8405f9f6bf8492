package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdbook/booking-api/internal/model"
	apperrors "github.com/opdbook/booking-api/pkg/errors"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("98765 43210"))
	assert.Equal(t, "9876543210", NormalizePhone("(98765) 432-10"))
	assert.Equal(t, "9876543210", NormalizePhone("98765432109999"))
	assert.Equal(t, "987", NormalizePhone("9-8-7"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestValidateDetailsAccepts(t *testing.T) {
	patient, err := validateDetails(&model.SubmitDetailsRequest{
		Name:  "  Asha Rao ",
		Phone: "98765 43210",
		Email: "asha@example.com",
		Mode:  model.ConsultationOffline,
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao", patient.Name)
	assert.Equal(t, "9876543210", patient.Phone)
	assert.Equal(t, "asha@example.com", patient.Email)
}

func TestValidateDetailsRejectsBadName(t *testing.T) {
	for _, name := range []string{"", "Al", "R2D2", "A@sha"} {
		_, err := validateDetails(&model.SubmitDetailsRequest{
			Name:  name,
			Phone: "9876543210",
			Mode:  model.ConsultationOffline,
		}, false)
		require.Error(t, err, "name %q should be rejected", name)
		assert.Contains(t, apperrors.FieldsOf(err), "name")
	}
}

func TestValidateDetailsRejectsBadPhone(t *testing.T) {
	for _, phone := range []string{"", "12345", "5876543210", "987654321"} {
		_, err := validateDetails(&model.SubmitDetailsRequest{
			Name:  "Asha Rao",
			Phone: phone,
			Mode:  model.ConsultationOffline,
		}, false)
		require.Error(t, err, "phone %q should be rejected", phone)
		assert.Contains(t, apperrors.FieldsOf(err), "phone")
	}
}

func TestValidateDetailsEmailRules(t *testing.T) {
	// online consultations need an address for the meeting link
	_, err := validateDetails(&model.SubmitDetailsRequest{
		Name:  "Asha Rao",
		Phone: "9876543210",
		Mode:  model.ConsultationOnline,
	}, true)
	require.Error(t, err)
	assert.Contains(t, apperrors.FieldsOf(err), "email")

	// in-person visits do not
	_, err = validateDetails(&model.SubmitDetailsRequest{
		Name:  "Asha Rao",
		Phone: "9876543210",
		Mode:  model.ConsultationOffline,
	}, false)
	assert.NoError(t, err)

	// a supplied address must still parse
	_, err = validateDetails(&model.SubmitDetailsRequest{
		Name:  "Asha Rao",
		Phone: "9876543210",
		Email: "not-an-email",
		Mode:  model.ConsultationOffline,
	}, false)
	require.Error(t, err)
	assert.Contains(t, apperrors.FieldsOf(err), "email")
}
