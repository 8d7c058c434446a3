package reset_unread_batch

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса, ожидается bookingIds"
	msgInvalidInput       = "список bookingIds пуст или слишком длинный"
	msgMissingIdentity    = "требуется авторизация"
	msgForbidden          = "в списке есть чужие записи"
	msgReset              = "счетчики непрочитанного сброшены"
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

// Handle PUT /api/v1/bookings/reset-unread-batch
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return
	}

	var req ResetUnreadBatchRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bookings/reset-unread-batch - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ResetUnreadBatch(r.Context(), identity, req.BookingIDs)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("PUT /bookings/reset-unread-batch - Invalid input: count=%d", len(req.BookingIDs))
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PUT /bookings/reset-unread-batch - Access denied: user_id=%s, role=%s", identity.UserID, identity.Role)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PUT /bookings/reset-unread-batch - Failed: user_id=%s, error=%v", identity.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /bookings/reset-unread-batch - Reset: user_id=%s, updated=%d", identity.UserID, result.Updated)
	handlers.RespondMessage(w, http.StatusOK, msgReset, result)
}
