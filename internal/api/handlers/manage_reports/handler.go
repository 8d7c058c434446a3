package manage_reports

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidGroupName   = "некорректное имя группы"
	msgInvalidInput       = "некорректные данные отчетов"
	msgNotFound           = "бронирование не найдено"
	msgGroupNotFound      = "группа отчетов не найдена"
	msgGroupExists        = "группа с таким именем уже существует"
	msgReportNotFound     = "файл отчета не найден"
	msgMissingIdentity    = "требуется авторизация"
	msgForbidden          = "изменять отчеты может только пациент этой записи"

	msgReportsUpdated = "отчеты обновлены"
	msgGroupSaved     = "группа отчетов сохранена"
	msgGroupRenamed   = "группа отчетов переименована"
	msgGroupDeleted   = "группа отчетов удалена"
	msgFileRemoved    = "файл удален из группы"
)

type Handler struct {
	service ReportsService
	logger  Logger
}

func NewHandler(service ReportsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Update PUT /api/v1/bookings/{bookingId}/reports
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "PUT /bookings/{id}/reports"

	bookingID, identity, ok := h.prepare(w, r, op)
	if !ok {
		return
	}

	var req models.UpdateReportsRequest
	if !h.decode(w, r, op, &req) {
		return
	}

	booking, err := h.service.UpdateReports(r.Context(), identity, bookingID, &req)
	h.respond(w, op, bookingID, identity, booking, err, msgReportsUpdated)
}

// SaveGroup POST /api/v1/bookings/{bookingId}/reports/save
func (h *Handler) SaveGroup(w http.ResponseWriter, r *http.Request) {
	const op = "POST /bookings/{id}/reports/save"

	bookingID, identity, ok := h.prepare(w, r, op)
	if !ok {
		return
	}

	var req models.SaveReportGroupRequest
	if !h.decode(w, r, op, &req) {
		return
	}

	booking, err := h.service.SaveReportGroup(r.Context(), identity, bookingID, &req)
	h.respond(w, op, bookingID, identity, booking, err, msgGroupSaved)
}

// RenameGroup PUT /api/v1/bookings/{bookingId}/reports/{oldName}
func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	const op = "PUT /bookings/{id}/reports/{oldName}"

	bookingID, identity, ok := h.prepare(w, r, op)
	if !ok {
		return
	}

	oldName, ok := h.groupName(w, r, op, "oldName")
	if !ok {
		return
	}

	var req models.RenameReportGroupRequest
	if !h.decode(w, r, op, &req) {
		return
	}

	booking, err := h.service.RenameReportGroup(r.Context(), identity, bookingID, oldName, &req)
	h.respond(w, op, bookingID, identity, booking, err, msgGroupRenamed)
}

// DeleteGroup DELETE /api/v1/bookings/{bookingId}/reports/{groupName}
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	const op = "DELETE /bookings/{id}/reports/{groupName}"

	bookingID, identity, ok := h.prepare(w, r, op)
	if !ok {
		return
	}

	name, ok := h.groupName(w, r, op, "groupName")
	if !ok {
		return
	}

	booking, err := h.service.DeleteReportGroup(r.Context(), identity, bookingID, name)
	h.respond(w, op, bookingID, identity, booking, err, msgGroupDeleted)
}

// RemoveFile PUT /api/v1/bookings/{bookingId}/reports/{groupName}/remove-file
func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	const op = "PUT /bookings/{id}/reports/{groupName}/remove-file"

	bookingID, identity, ok := h.prepare(w, r, op)
	if !ok {
		return
	}

	name, ok := h.groupName(w, r, op, "groupName")
	if !ok {
		return
	}

	var req models.RemoveFileRequest
	if !h.decode(w, r, op, &req) {
		return
	}

	booking, err := h.service.RemoveFileFromGroup(r.Context(), identity, bookingID, name, &req)
	h.respond(w, op, bookingID, identity, booking, err, msgFileRemoved)
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, domain.Identity, bool) {
	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("%s - Invalid booking ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return uuid.Nil, domain.Identity{}, false
	}

	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingIdentity)
		return uuid.Nil, domain.Identity{}, false
	}

	return bookingID, identity, true
}

func (h *Handler) groupName(w http.ResponseWriter, r *http.Request, op, variable string) (string, bool) {
	name := strings.TrimSpace(handlers.PathString(r, variable))
	if name == "" {
		h.logger.Warn("%s - Empty group name", op)
		handlers.RespondBadRequest(w, msgInvalidGroupName)
		return "", false
	}
	return name, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, op string, v interface{}) bool {
	if err := handlers.DecodeJSON(r, v); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return false
	}
	return true
}

func (h *Handler) respond(
	w http.ResponseWriter,
	op string,
	bookingID uuid.UUID,
	identity domain.Identity,
	booking *models.BookingResponse,
	err error,
	successMsg string,
) {
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("%s - Booking not found: booking_id=%s", op, bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: booking_id=%s, user_id=%s", op, bookingID, identity.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrReportGroupNotFound):
			h.logger.Warn("%s - Group not found: booking_id=%s", op, bookingID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, bookings.ErrReportNotFound):
			h.logger.Warn("%s - Report not found: booking_id=%s", op, bookingID)
			handlers.RespondNotFound(w, msgReportNotFound)

		case errors.Is(err, bookings.ErrReportGroupExists):
			h.logger.Warn("%s - Group already exists: booking_id=%s", op, bookingID)
			handlers.RespondConflict(w, msgGroupExists)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", op, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("%s - Failed: booking_id=%s, error=%v", op, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Done: booking_id=%s, groups=%d, unread=%d",
		op, bookingID, len(booking.CurrentReports), booking.UnreadPatientUpdates)
	handlers.RespondMessage(w, http.StatusOK, successMsg, booking)
}
