package update_health_issues

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidText        = "описание жалоб пустое или слишком длинное"
	msgNotFound           = "бронирование не найдено"
	msgMissingIdentity    = "требуется авторизация"
	msgForbidden          = "изменять жалобы может только пациент этой записи"
	msgUpdated            = "жалобы обновлены"
)

// UpdateHealthIssuesRequest HTTP request model
type UpdateHealthIssuesRequest struct {
	HealthIssues string `json:"healthIssues"`
}

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

// Handle PUT /api/v1/bookings/{bookingId}/health-issues
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PUT /bookings/{id}/health-issues - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req UpdateHealthIssuesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/{id}/health-issues - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.UpdateHealthIssues(r.Context(), identity, bookingID, req.HealthIssues)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PUT /bookings/{id}/health-issues - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PUT /bookings/{id}/health-issues - Access denied: booking_id=%s, user_id=%s", bookingID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PUT /bookings/{id}/health-issues - Invalid text: %v", err)
			handlers.RespondBadRequest(w, msgInvalidText)

		default:
			h.logger.Error("PUT /bookings/{id}/health-issues - Failed to update: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/{id}/health-issues - Updated: booking_id=%s, unread=%d", bookingID, booking.UnreadPatientUpdates)
	handlers.RespondMessage(w, http.StatusOK, msgUpdated, booking)
}
