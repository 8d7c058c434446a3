package manage_reports

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
)

type fakeService struct {
	err     error
	calls   []string
	oldName string
	group   string
	save    *models.SaveReportGroupRequest
}

func (f *fakeService) result(call string) (*models.BookingResponse, error) {
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{UnreadPatientUpdates: 1}, nil
}

func (f *fakeService) UpdateReports(_ context.Context, _ domain.Identity, _ uuid.UUID, _ *models.UpdateReportsRequest) (*models.BookingResponse, error) {
	return f.result("update")
}

func (f *fakeService) SaveReportGroup(_ context.Context, _ domain.Identity, _ uuid.UUID, req *models.SaveReportGroupRequest) (*models.BookingResponse, error) {
	f.save = req
	return f.result("save")
}

func (f *fakeService) RenameReportGroup(_ context.Context, _ domain.Identity, _ uuid.UUID, oldName string, _ *models.RenameReportGroupRequest) (*models.BookingResponse, error) {
	f.oldName = oldName
	return f.result("rename")
}

func (f *fakeService) DeleteReportGroup(_ context.Context, _ domain.Identity, _ uuid.UUID, name string) (*models.BookingResponse, error) {
	f.group = name
	return f.result("delete")
}

func (f *fakeService) RemoveFileFromGroup(_ context.Context, _ domain.Identity, _ uuid.UUID, name string, _ *models.RemoveFileRequest) (*models.BookingResponse, error) {
	f.group = name
	return f.result("remove-file")
}

// router собирает маршруты так же, как cmd/main.go
func router(h *Handler, identity domain.Identity) http.Handler {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), identity)))
		})
	})
	r.HandleFunc("/bookings/{bookingId}/reports", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/bookings/{bookingId}/reports/save", h.SaveGroup).Methods(http.MethodPost)
	r.HandleFunc("/bookings/{bookingId}/reports/{groupName}/remove-file", h.RemoveFile).Methods(http.MethodPut)
	r.HandleFunc("/bookings/{bookingId}/reports/{oldName}", h.RenameGroup).Methods(http.MethodPut)
	r.HandleFunc("/bookings/{bookingId}/reports/{groupName}", h.DeleteGroup).Methods(http.MethodDelete)
	return r
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestRoutes_DispatchToService(t *testing.T) {
	svc := &fakeService{}
	patient := domain.Identity{UserID: uuid.New(), Role: domain.RolePatient}
	h := router(NewHandler(svc, logger.NewNop()), patient)
	base := "/bookings/" + uuid.NewString() + "/reports"

	assert.Equal(t, http.StatusOK, send(t, h, http.MethodPut, base, `{"action":"add","reportUrl":"https://f.test/a.pdf"}`).Code)
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodPost, base+"/save", `{"name":"CBC","urls":["https://f.test/1.pdf","https://f.test/2.pdf"]}`).Code)
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodPut, base+"/Blood%20Work", `{"newName":"Labs"}`).Code)
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodPut, base+"/CBC/remove-file", `{"fileUrl":"https://f.test/1.pdf"}`).Code)
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodDelete, base+"/CBC", "").Code)

	assert.Equal(t, []string{"update", "save", "rename", "remove-file", "delete"}, svc.calls)
	require.NotNil(t, svc.save)
	assert.Equal(t, "CBC", svc.save.Name)
	assert.Len(t, svc.save.URLs, 2)
	assert.Equal(t, "Blood Work", svc.oldName)
	assert.Equal(t, "CBC", svc.group)
}

func TestRespond_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "booking not found", err: bookings.ErrBookingNotFound, status: http.StatusNotFound},
		{name: "not owner", err: bookings.ErrAccessDenied, status: http.StatusForbidden},
		{name: "group not found", err: fmt.Errorf("%w: CBC", bookings.ErrReportGroupNotFound), status: http.StatusNotFound},
		{name: "report not found", err: bookings.ErrReportNotFound, status: http.StatusNotFound},
		{name: "group exists", err: bookings.ErrReportGroupExists, status: http.StatusConflict},
		{name: "invalid", err: bookings.ErrInvalidInput, status: http.StatusBadRequest},
		{name: "internal", err: bookings.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			h := router(NewHandler(svc, logger.NewNop()), domain.Identity{UserID: uuid.New(), Role: domain.RolePatient})

			rec := send(t, h, http.MethodPut, "/bookings/"+uuid.NewString()+"/reports/CBC", `{"newName":"Labs"}`)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRoutes_BadInput(t *testing.T) {
	svc := &fakeService{}
	h := router(NewHandler(svc, logger.NewNop()), domain.Identity{UserID: uuid.New(), Role: domain.RolePatient})

	assert.Equal(t, http.StatusBadRequest, send(t, h, http.MethodPut, "/bookings/not-a-uuid/reports", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, send(t, h, http.MethodPost, "/bookings/"+uuid.NewString()+"/reports/save", `[`).Code)
	assert.Equal(t, http.StatusBadRequest, send(t, h, http.MethodDelete, "/bookings/"+uuid.NewString()+"/reports/%20", "").Code)
	assert.Empty(t, svc.calls)
}
