package update_time_slots

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
	msgInvalidTemplate    = "некорректный шаблон: день недели, время HH:MM, начало раньше конца, без повторов"
	msgMissingIdentity    = "требуется авторизация"
	msgForbidden          = "менять расписание может только врач"
	msgNotFound           = "врач не найден"
	msgUpdated            = "расписание обновлено"
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

// Handle PUT /api/v1/doctors/me/time-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req models.ReplaceTimeSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /doctors/me/time-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	doctor, err := h.service.ReplaceTimeSlots(r.Context(), identity, &req)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("PUT /doctors/me/time-slots - Access denied: user_id=%s, role=%s", identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, doctors.ErrInvalidInput):
			h.logger.Warn("PUT /doctors/me/time-slots - Invalid template: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTemplate)

		case errors.Is(err, doctors.ErrDoctorNotFound):
			h.logger.Warn("PUT /doctors/me/time-slots - Doctor not found: doctor_id=%s", identity.DoctorID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("PUT /doctors/me/time-slots - Failed to replace template: doctor_id=%s, error=%v", identity.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /doctors/me/time-slots - Template replaced: doctor_id=%s, slots=%d", identity.DoctorID, len(doctor.TimeSlots))
	handlers.RespondMessage(w, http.StatusOK, msgUpdated, doctor)
}
