package cancel_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "нужна дата YYYY-MM-DD и, для одного слота, startingTime и endingTime HH:MM"
	msgMissingIdentity    = "требуется авторизация"
	msgForbidden          = "отменять записи может только врач"
	msgCancelled          = "записи отменены"
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

// Handle POST /api/v1/doctors/me/appointments/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req models.CancelAppointmentsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /doctors/me/appointments/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CancelAppointments(r.Context(), identity, &req)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("POST /doctors/me/appointments/cancel - Access denied: user_id=%s, role=%s", identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, doctors.ErrInvalidInput):
			h.logger.Warn("POST /doctors/me/appointments/cancel - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /doctors/me/appointments/cancel - Failed: doctor_id=%s, date=%s, error=%v",
				identity.DoctorID, req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /doctors/me/appointments/cancel - Cancelled %d bookings: doctor_id=%s, date=%s",
		result.Cancelled, identity.DoctorID, req.Date)
	handlers.RespondMessage(w, http.StatusOK, msgCancelled, result)
}
