package confirm_payment

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
	confirmPayment "github.com/m04kA/SMC-DoctorBooking/internal/usecase/confirm_payment"
)

const (
	msgInvalidBookingID = "некорректный или отсутствующий bookingId"
	msgMissingSession   = "отсутствует session_id"
	msgSessionMismatch  = "сессия оплаты не соответствует записи"
	msgNotFound         = "бронирование не найдено"
	msgBookingClosed    = "запись отменена или завершена"
	msgConfirmed        = "оплата подтверждена"
	msgAlreadyPaid      = "оплата уже была подтверждена"
)

type Handler struct {
	useCase ConfirmPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/payment-success?bookingId=&session_id=
// Публичный маршрут: сюда возвращает пользователя платежный провайдер, подставляя id сессии оплаты
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("bookingId"))
	bookingID, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("GET /bookings/payment-success - Invalid booking ID %q: %v", raw, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		h.logger.Warn("GET /bookings/payment-success - Missing session_id: booking_id=%s", bookingID)
		handlers.RespondBadRequest(w, msgMissingSession)
		return
	}

	result, err := h.useCase.Execute(r.Context(), bookingID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, confirmPayment.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/payment-success - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmPayment.ErrSessionMismatch):
			h.logger.Warn("GET /bookings/payment-success - Session mismatch: booking_id=%s", bookingID)
			handlers.RespondForbidden(w, msgSessionMismatch)

		case errors.Is(err, confirmPayment.ErrBookingClosed):
			h.logger.Warn("GET /bookings/payment-success - Booking closed: booking_id=%s", bookingID)
			handlers.RespondConflict(w, msgBookingClosed)

		default:
			h.logger.Error("GET /bookings/payment-success - Failed to confirm: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	msg := msgConfirmed
	if result.AlreadyPaid {
		msg = msgAlreadyPaid
	}

	h.logger.Info("GET /bookings/payment-success - Confirmed: booking_id=%s, already_paid=%t", bookingID, result.AlreadyPaid)
	handlers.RespondMessage(w, http.StatusOK, msg, models.FromDomainBooking(result.Booking))
}
