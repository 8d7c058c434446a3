package get_doctor

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors"
)

const (
	msgInvalidDoctorID = "некорректный ID врача"
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

// Handle GET /api/v1/doctors/{doctorId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathUUID(r, "doctorId")
	if err != nil {
		h.logger.Warn("GET /doctors/{id} - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	doctor, err := h.service.GetByID(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, doctors.ErrDoctorNotFound) {
			h.logger.Warn("GET /doctors/{id} - Doctor not found: doctor_id=%s", doctorID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /doctors/{id} - Failed to get doctor: doctor_id=%s, error=%v", doctorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /doctors/{id} - Doctor retrieved: doctor_id=%s, slots=%d", doctorID, len(doctor.TimeSlots))
	handlers.RespondJSON(w, http.StatusOK, doctor)
}
