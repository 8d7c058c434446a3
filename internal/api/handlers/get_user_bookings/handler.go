package get_user_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
)

const (
	msgMissingIdentity = "требуется авторизация"
	msgForbidden       = "список записей доступен только пациенту"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/me/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.logger.Warn("GET /users/me/appointments - Missing identity")
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	result, err := h.service.ListByPatient(r.Context(), identity)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /users/me/appointments - Access denied: user_id=%s, role=%s", identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /users/me/appointments - Failed to list bookings: user_id=%s, error=%v", identity.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /users/me/appointments - Retrieved %d bookings for user_id=%s", len(result.Bookings), identity.UserID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
