package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdbook/booking-api/internal/model"
	apperrors "github.com/opdbook/booking-api/pkg/errors"
)

func newSession() *model.BookingContext {
	return &model.BookingContext{
		SessionID: uuid.New(),
		Facility:  "City Clinic",
		Stage:     model.StageSlotSelection,
		Payment:   model.PaymentProgress{State: model.PaymentNotStarted},
	}
}

func testPatient() *model.PatientDetails {
	return &model.PatientDetails{Name: "Asha Rao", Phone: "9876543210"}
}

func advanceToPaymentOffline(t *testing.T, bc *model.BookingContext) {
	t.Helper()
	require.NoError(t, selectSlot(bc, "2025-03-11", "10:00 AM"))
	require.NoError(t, submitDetails(bc, testPatient(), model.ConsultationOffline))
	require.NoError(t, skipCaseForm(bc, true))
	require.Equal(t, model.StagePaymentPending, bc.Stage)
}

func TestOfflinePathThroughIntake(t *testing.T) {
	bc := newSession()

	require.NoError(t, selectSlot(bc, "2025-03-11", "10:00 AM"))
	assert.Equal(t, model.StageDetailsEntry, bc.Stage)
	assert.Equal(t, "11-03-2025", bc.Slot.DateFormatted)

	require.NoError(t, submitDetails(bc, testPatient(), model.ConsultationOffline))
	assert.Equal(t, model.StageCaseIntake, bc.Stage)

	form := &model.CaseForm{Timeline: "two years"}
	require.NoError(t, applyCaseForm(bc, form))
	// partial form saves but does not advance
	assert.Equal(t, model.StageCaseIntake, bc.Stage)

	complete := &model.CaseForm{
		Timeline:            "two years",
		Childhood:           "healthy",
		MajorIllnesses:      "none",
		MainSymptoms:        "migraine",
		SymptomLocation:     "left temple",
		SymptomDuration:     "two years",
		DailyBasis:          "evenings",
		FamilyHealthSummary: "mother hypertensive",
	}
	require.NoError(t, applyCaseForm(bc, complete))
	assert.Equal(t, model.StagePaymentPending, bc.Stage)
	assert.False(t, bc.FormSkipped)
}

func TestOnlinePathSkipsIntake(t *testing.T) {
	bc := newSession()

	require.NoError(t, selectSlot(bc, "2025-03-11", "10:00 AM"))
	require.NoError(t, submitDetails(bc, testPatient(), model.ConsultationOnline))
	assert.Equal(t, model.StagePaymentPending, bc.Stage)

	err := applyCaseForm(bc, &model.CaseForm{})
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestSkipRequiresExplicitConfirmation(t *testing.T) {
	bc := newSession()
	require.NoError(t, selectSlot(bc, "2025-03-11", "10:00 AM"))
	require.NoError(t, submitDetails(bc, testPatient(), model.ConsultationOffline))

	err := skipCaseForm(bc, false)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
	assert.Equal(t, model.StageCaseIntake, bc.Stage)

	require.NoError(t, skipCaseForm(bc, true))
	assert.True(t, bc.FormSkipped)
	assert.Equal(t, model.StagePaymentPending, bc.Stage)
}

func TestBackNavigationBeforeAppointment(t *testing.T) {
	bc := newSession()
	require.NoError(t, selectSlot(bc, "2025-03-11", "10:00 AM"))
	require.NoError(t, submitDetails(bc, testPatient(), model.ConsultationOffline))
	require.NoError(t, skipCaseForm(bc, true))

	require.NoError(t, goBack(bc))
	assert.Equal(t, model.StageCaseIntake, bc.Stage)
	require.NoError(t, goBack(bc))
	assert.Equal(t, model.StageDetailsEntry, bc.Stage)
	require.NoError(t, goBack(bc))
	assert.Equal(t, model.StageSlotSelection, bc.Stage)

	err := goBack(bc)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestAppointmentFreezesEverythingButTheForm(t *testing.T) {
	bc := newSession()
	advanceToPaymentOffline(t, bc)

	require.NoError(t, beginCreate(bc))
	completeCreate(bc, uuid.New())

	err := selectSlot(bc, "2025-03-12", "11:00 AM")
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	err = submitDetails(bc, testPatient(), model.ConsultationOnline)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	// the intake form alone stays editable
	require.NoError(t, goBack(bc))
	assert.Equal(t, model.StageCaseIntake, bc.Stage)
	require.NoError(t, applyCaseForm(bc, &model.CaseForm{Timeline: "updated"}))
}

func TestCreateLatchBlocksDuplicates(t *testing.T) {
	bc := newSession()
	advanceToPaymentOffline(t, bc)

	require.NoError(t, beginCreate(bc))
	err := beginCreate(bc)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	failCreate(bc)
	require.NoError(t, beginCreate(bc))
	completeCreate(bc, uuid.New())

	err = beginCreate(bc)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestPaymentLifecycle(t *testing.T) {
	bc := newSession()
	advanceToPaymentOffline(t, bc)
	require.NoError(t, beginCreate(bc))
	completeCreate(bc, uuid.New())

	require.NoError(t, attachOrder(bc, "order_1", model.RegionDomestic, model.VisitOfflineConsult))
	assert.Equal(t, 1, bc.Payment.Attempts)

	require.NoError(t, beginVerification(bc, "order_1"))
	assert.Equal(t, model.StagePaymentVerifying, bc.Stage)

	require.NoError(t, markVerified(bc))
	assert.Equal(t, model.StageConfirmed, bc.Stage)

	// nothing restarts after a verified payment
	err := attachOrder(bc, "order_2", model.RegionDomestic, model.VisitOfflineConsult)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestFailedAttemptGetsFreshOrderAndOldOneDies(t *testing.T) {
	bc := newSession()
	advanceToPaymentOffline(t, bc)
	require.NoError(t, beginCreate(bc))
	completeCreate(bc, uuid.New())

	require.NoError(t, attachOrder(bc, "order_1", model.RegionDomestic, model.VisitOfflineConsult))
	require.NoError(t, markFailed(bc, "checkout_dismissed"))
	assert.Equal(t, model.StagePaymentPending, bc.Stage)

	require.NoError(t, attachOrder(bc, "order_2", model.RegionDomestic, model.VisitOfflineConsult))
	assert.Equal(t, 2, bc.Payment.Attempts)

	// the superseded order can no longer be verified
	err := beginVerification(bc, "order_1")
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))

	require.NoError(t, beginVerification(bc, "order_2"))
}

func TestTimeoutRoutesToSupport(t *testing.T) {
	bc := newSession()
	advanceToPaymentOffline(t, bc)
	require.NoError(t, beginCreate(bc))
	completeCreate(bc, uuid.New())

	require.NoError(t, attachOrder(bc, "order_1", model.RegionDomestic, model.VisitOfflineConsult))
	require.NoError(t, beginVerification(bc, "order_1"))

	require.NoError(t, markTimedOut(bc))
	assert.True(t, bc.Payment.ContactSupport)
	assert.Equal(t, "verification_timeout", bc.Payment.LastFailure)

	// no automatic retries once the charge is ambiguous
	err := attachOrder(bc, "order_2", model.RegionDomestic, model.VisitOfflineConsult)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}
