package confirm_payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	confirmPayment "github.com/m04kA/SMC-DoctorBooking/internal/usecase/confirm_payment"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
)

type fakeUseCase struct {
	resp       *confirmPayment.Response
	err        error
	got        uuid.UUID
	gotSession string
}

func (f *fakeUseCase) Execute(_ context.Context, id uuid.UUID, sessionID string) (*confirmPayment.Response, error) {
	f.got = id
	f.gotSession = sessionID
	return f.resp, f.err
}

func confirmQuery(id string) string {
	return "?bookingId=" + id + "&session_id=cs_test_1"
}

func get(h *Handler, query string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/payment-success"+query, nil))
	return rec
}

func TestHandle_Confirms(t *testing.T) {
	id := uuid.New()
	uc := &fakeUseCase{resp: &confirmPayment.Response{
		Booking: &domain.Booking{ID: id, IsPaid: true, Status: domain.StatusApproved},
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := get(h, confirmQuery(id.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, uc.got)
	assert.Equal(t, "cs_test_1", uc.gotSession)

	var body struct {
		Message string `json:"message"`
		Data    struct {
			IsPaid bool   `json:"isPaid"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, msgConfirmed, body.Message)
	assert.True(t, body.Data.IsPaid)
	assert.Equal(t, "approved", body.Data.Status)
}

func TestHandle_AlreadyPaid(t *testing.T) {
	uc := &fakeUseCase{resp: &confirmPayment.Response{
		Booking:     &domain.Booking{ID: uuid.New(), IsPaid: true, Status: domain.StatusApproved},
		AlreadyPaid: true,
	}}
	h := NewHandler(uc, logger.NewNop())

	rec := get(h, confirmQuery(uuid.NewString()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAlreadyPaid)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{name: "missing id", query: "", status: http.StatusBadRequest},
		{name: "malformed id", query: confirmQuery("abc"), status: http.StatusBadRequest},
		{name: "missing session", query: "?bookingId=" + uuid.NewString(), status: http.StatusBadRequest},
		{name: "session mismatch", query: confirmQuery(uuid.NewString()), err: confirmPayment.ErrSessionMismatch, status: http.StatusForbidden},
		{name: "unknown booking", query: confirmQuery(uuid.NewString()), err: confirmPayment.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "cancelled booking", query: confirmQuery(uuid.NewString()), err: confirmPayment.ErrBookingClosed, status: http.StatusConflict},
		{name: "internal", query: confirmQuery(uuid.NewString()), err: confirmPayment.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, logger.NewNop())

			rec := get(h, tt.query)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
