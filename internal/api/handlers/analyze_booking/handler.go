package analyze_booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgMissingIdentity  = "требуется авторизация"
	msgForbidden        = "доступ запрещен"
	msgUpstream         = "сервис AI-анализа недоступен"
	msgAnalyzed         = "анализ выполнен"
)

// AnalysisResponse HTTP response model
type AnalysisResponse struct {
	AIAnalysis json.RawMessage `json:"aiAnalysis"`
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

// Handle POST /api/v1/bookings/{bookingId}/analyze
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/analyze - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	result, err := h.service.Analyze(r.Context(), identity, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/analyze - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/analyze - Access denied: booking_id=%s, user_id=%s", bookingID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrUpstream):
			h.logger.Warn("POST /bookings/{id}/analyze - Upstream failure: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondBadGateway(w, msgUpstream)

		default:
			h.logger.Error("POST /bookings/{id}/analyze - Failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/analyze - Analyzed: booking_id=%s", bookingID)
	handlers.RespondMessage(w, http.StatusOK, msgAnalyzed, AnalysisResponse{AIAnalysis: result})
}
