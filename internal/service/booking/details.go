package booking

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/pkg/errors"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z ]+$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("patient_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 3 && namePattern.MatchString(name)
	})
	_ = v.RegisterValidation("indian_mobile", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// NormalizePhone strips everything but digits and keeps at most ten, the way
// the booking form's input mask does.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == 10 {
				break
			}
		}
	}
	return b.String()
}

// validateDetails checks the details page fields and returns the normalized
// patient record. emailRequired follows the per-mode config: the online flow
// needs an address for the meeting link, in-person visits do not.
func validateDetails(req *model.SubmitDetailsRequest, emailRequired bool) (*model.PatientDetails, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(req.Name)
	if err := validate.Var(name, "patient_name"); err != nil {
		fields["name"] = "must be at least 3 letters, alphabets and spaces only"
	}

	phone := NormalizePhone(req.Phone)
	if err := validate.Var(phone, "indian_mobile"); err != nil {
		fields["phone"] = "must be a valid 10-digit mobile number"
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		if emailRequired {
			fields["email"] = "email is required"
		}
	} else if err := validate.Var(email, "email"); err != nil {
		fields["email"] = "must be a valid email address"
	}

	if len(fields) > 0 {
		return nil, errors.NewValidation("invalid patient details", fields)
	}

	return &model.PatientDetails{Name: name, Phone: phone, Email: email}, nil
}
