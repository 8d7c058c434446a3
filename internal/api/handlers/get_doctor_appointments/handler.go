package get_doctor_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

const (
	msgMissingIdentity = "требуется авторизация"
	msgForbidden       = "записи доступны только врачу и его регистратору"
	msgInvalidFilter   = "некорректный фильтр: дата YYYY-MM-DD, время HH:MM"
)

type Handler struct {
	service DoctorService
	logger  Logger
}

func NewHandler(service DoctorService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/me/appointments?date=&startingTime=&endingTime=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	q := r.URL.Query()
	filter := &models.AppointmentsFilterRequest{
		Date:         q.Get("date"),
		StartingTime: q.Get("startingTime"),
		EndingTime:   q.Get("endingTime"),
	}

	result, err := h.service.Appointments(r.Context(), identity, filter)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("GET /doctors/me/appointments - Access denied: user_id=%s, role=%s", identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, doctors.ErrInvalidInput):
			h.logger.Warn("GET /doctors/me/appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /doctors/me/appointments - Failed to list appointments: doctor_id=%s, error=%v", identity.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/me/appointments - Retrieved %d bookings: doctor_id=%s, date=%q",
		len(result.Bookings), identity.DoctorID, filter.Date)
	handlers.RespondJSON(w, http.StatusOK, result)
}
