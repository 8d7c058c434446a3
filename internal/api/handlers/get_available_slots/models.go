package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-DoctorBooking/internal/usecase/get_availability"
)

// AvailableSlotsRequest HTTP request model
type AvailableSlotsRequest struct {
	Date string `json:"date"` // "2025-10-15"
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date    string            `json:"date"`
	Weekday domain.Weekday    `json:"weekday"`
	Slots   []domain.TimeSlot `json:"slots"`
}

// ParseDate разбирает дату запроса
func (r *AvailableSlotsRequest) ParseDate() (time.Time, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return time.Time{}, err
	}
	return domain.NormalizeDate(date), nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.FreeSlotsResponse) *AvailableSlotsResponse {
	slots := resp.Slots
	if slots == nil {
		slots = []domain.TimeSlot{}
	}

	return &AvailableSlotsResponse{
		Date:    resp.Date.Format(domain.DateFormat),
		Weekday: resp.Weekday,
		Slots:   slots,
	}
}
