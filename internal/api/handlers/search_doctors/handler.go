package search_doctors

import (
	"net/http"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
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

// Handle GET /api/v1/doctors?query=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("GET /doctors - Failed to search doctors: query=%q, error=%v", query, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /doctors - Found %d doctors: query=%q", len(result.Doctors), query)
	handlers.RespondJSON(w, http.StatusOK, result)
}
