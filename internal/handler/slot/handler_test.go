package slot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/model"
	slotService "github.com/opdbook/booking-api/internal/service/slot"
)

type stubAppointmentRepo struct {
	booked map[string]int
}

func (s *stubAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error { return nil }
func (s *stubAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, nil
}
func (s *stubAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}
func (s *stubAppointmentRepo) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	return nil
}
func (s *stubAppointmentRepo) MarkPaid(ctx context.Context, id uuid.UUID, paymentID string) error {
	return nil
}
func (s *stubAppointmentRepo) BookedCounts(ctx context.Context, date string) (map[string]int, error) {
	return s.booked, nil
}
func (s *stubAppointmentRepo) RecordPaymentFailure(ctx context.Context, failure *model.PaymentFailure) error {
	return nil
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	svc := slotService.NewService(&stubAppointmentRepo{booked: map[string]int{"10:30 AM": 1}}, config.ClinicConfig{
		OpeningTime:  "10:00",
		ClosingTime:  "12:00",
		SlotInterval: 30 * time.Minute,
		SlotCapacity: 1,
	}, &logger)

	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSlotsEndpoint(t *testing.T) {
	engine := setupRouter(t)

	tomorrow := time.Now().AddDate(0, 0, 1).Format(model.DateLayout)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/slots/"+tomorrow, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string       `json:"status"`
		Data   []model.Slot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	require.Len(t, body.Data, 4)

	for _, s := range body.Data {
		if s.Time == "10:30 AM" {
			assert.False(t, s.Available)
		} else {
			assert.True(t, s.Available)
		}
	}
}

func TestSlotsEndpointRejectsPastDate(t *testing.T) {
	engine := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/slots/2020-01-01", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}

func TestCalendarEndpoint(t *testing.T) {
	engine := setupRouter(t)

	month := time.Now().AddDate(0, 1, 0).Format("2006-01")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/calendar/"+month, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string              `json:"status"`
		Data   []model.CalendarDay `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 42)
}

func TestCalendarEndpointRejectsBadMonth(t *testing.T) {
	engine := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/calendar/march", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
