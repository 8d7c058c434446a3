package doctor_availability

import (
	"time"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// DatesResponse HTTP response model
type DatesResponse struct {
	Dates []string `json:"dates"` // "2025-10-15"
}

func fromDates(dates []time.Time) *DatesResponse {
	resp := &DatesResponse{Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.Format(domain.DateFormat))
	}
	return resp
}
