package add_doctor_response

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
	msgInvalidText        = "ответ врача пустой или слишком длинный"
	msgNotFound           = "бронирование не найдено"
	msgMissingIdentity    = "требуется авторизация"
	msgForbidden          = "отвечать может только врач этой записи"
	msgAdded              = "ответ врача добавлен"
)

// DoctorResponseRequest HTTP request model
type DoctorResponseRequest struct {
	Response string `json:"response"`
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

// Handle POST /api/v1/bookings/{bookingId}/doctor-response
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/doctor-response - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req DoctorResponseRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/doctor-response - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.service.AddDoctorResponse(r.Context(), identity, bookingID, req.Response)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/doctor-response - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/doctor-response - Access denied: booking_id=%s, user_id=%s, role=%s",
				bookingID, identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/doctor-response - Invalid text: %v", err)
			handlers.RespondBadRequest(w, msgInvalidText)

		default:
			h.logger.Error("POST /bookings/{id}/doctor-response - Failed to add response: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/doctor-response - Added: booking_id=%s, doctor_id=%s", bookingID, identity.DoctorID)
	handlers.RespondMessage(w, http.StatusOK, msgAdded, booking)
}
