package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	getAvailability "github.com/m04kA/SMC-DoctorBooking/internal/usecase/get_availability"
)

const (
	msgInvalidDoctorID    = "некорректный ID врача"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgDateOutOfRange     = "дата в прошлом или за горизонтом записи"
	msgDoctorNotFound     = "врач не найден"
)

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

// Handle POST /api/v1/doctors/{doctorId}/available-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathUUID(r, "doctorId")
	if err != nil {
		h.logger.Warn("POST /doctors/{id}/available-slots - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	var req AvailableSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /doctors/{id}/available-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := req.ParseDate()
	if err != nil {
		h.logger.Warn("POST /doctors/{id}/available-slots - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.FreeSlots(r.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrDoctorNotFound):
			h.logger.Warn("POST /doctors/{id}/available-slots - Doctor not found: doctor_id=%s", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, getAvailability.ErrInvalidDate):
			h.logger.Warn("POST /doctors/{id}/available-slots - Date out of range: doctor_id=%s, date=%s", doctorID, req.Date)
			handlers.RespondBadRequest(w, msgDateOutOfRange)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("POST /doctors/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("POST /doctors/{id}/available-slots - Failed to get slots: doctor_id=%s, date=%s, error=%v",
				doctorID, req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /doctors/{id}/available-slots - Retrieved %d slots: doctor_id=%s, date=%s",
		len(response.Slots), doctorID, response.Date)
	handlers.RespondJSON(w, http.StatusOK, response)
}
