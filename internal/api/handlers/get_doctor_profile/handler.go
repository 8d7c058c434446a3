package get_doctor_profile

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors"
)

const (
	msgMissingIdentity = "требуется авторизация"
	msgForbidden       = "профиль доступен только врачу и его регистратору"
	msgNotFound        = "врач не найден"
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

// Handle GET /api/v1/doctors/me/profile
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), identity)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("GET /doctors/me/profile - Access denied: user_id=%s, role=%s", identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, doctors.ErrDoctorNotFound):
			h.logger.Warn("GET /doctors/me/profile - Doctor not found: doctor_id=%s", identity.DoctorID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /doctors/me/profile - Failed to get profile: doctor_id=%s, error=%v", identity.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/me/profile - Profile retrieved: doctor_id=%s", identity.DoctorID)
	handlers.RespondJSON(w, http.StatusOK, profile)
}
