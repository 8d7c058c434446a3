package doctor_availability

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-DoctorBooking/internal/usecase/get_availability"
)

const (
	msgInvalidDoctorID = "некорректный ID врача"
	msgDoctorNotFound  = "врач не найден"
)

// Handler проекции доступности врача на горизонт записи
type Handler struct {
	useCase AvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase AvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// AvailableDates GET /api/v1/doctors/{doctorId}/available-dates
func (h *Handler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	const op = "GET /doctors/{id}/available-dates"

	doctorID, ok := h.doctorID(w, r, op)
	if !ok {
		return
	}

	dates, err := h.useCase.AvailableDates(r.Context(), doctorID)
	if err != nil {
		h.respondError(w, op, doctorID, err)
		return
	}

	h.logger.Info("%s - %d dates: doctor_id=%s", op, len(dates), doctorID)
	handlers.RespondJSON(w, http.StatusOK, fromDates(dates))
}

// BlockedDates GET /api/v1/doctors/{doctorId}/blocked-dates
func (h *Handler) BlockedDates(w http.ResponseWriter, r *http.Request) {
	const op = "GET /doctors/{id}/blocked-dates"

	doctorID, ok := h.doctorID(w, r, op)
	if !ok {
		return
	}

	dates, err := h.useCase.BlockedDates(r.Context(), doctorID)
	if err != nil {
		h.respondError(w, op, doctorID, err)
		return
	}

	h.logger.Info("%s - %d dates: doctor_id=%s", op, len(dates), doctorID)
	handlers.RespondJSON(w, http.StatusOK, fromDates(dates))
}

// BlockedDatesWithSlots GET /api/v1/doctors/{doctorId}/blocked-dates-with-slots
// Полностью занятые даты помечаются "fully booked", частично занятые содержат список занятых слотов
func (h *Handler) BlockedDatesWithSlots(w http.ResponseWriter, r *http.Request) {
	const op = "GET /doctors/{id}/blocked-dates-with-slots"

	doctorID, ok := h.doctorID(w, r, op)
	if !ok {
		return
	}

	blocked, err := h.useCase.BlockedDatesWithSlots(r.Context(), doctorID)
	if err != nil {
		h.respondError(w, op, doctorID, err)
		return
	}

	h.logger.Info("%s - %d dates: doctor_id=%s", op, len(blocked), doctorID)
	handlers.RespondJSON(w, http.StatusOK, blocked)
}

func (h *Handler) doctorID(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, bool) {
	doctorID, err := handlers.PathUUID(r, "doctorId")
	if err != nil {
		h.logger.Warn("%s - Invalid doctor ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return uuid.Nil, false
	}
	return doctorID, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, doctorID uuid.UUID, err error) {
	if errors.Is(err, getAvailability.ErrDoctorNotFound) {
		h.logger.Warn("%s - Doctor not found: doctor_id=%s", op, doctorID)
		handlers.RespondNotFound(w, msgDoctorNotFound)
		return
	}
	h.logger.Error("%s - Failed to project availability: doctor_id=%s, error=%v", op, doctorID, err)
	handlers.RespondInternalError(w)
}
