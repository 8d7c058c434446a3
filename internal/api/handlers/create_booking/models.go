package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-DoctorBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	AppointmentDate string               `json:"appointmentDate"` // "2025-10-15"
	TimeSlot        domain.TimeSlot      `json:"timeSlot"`
	HealthIssues    string               `json:"healthIssues"`
	GroupedReports  []domain.ReportGroup `json:"groupedReports"`
}

// CheckoutResponse HTTP response model
type CheckoutResponse struct {
	Booking    *models.BookingResponse `json:"booking"`
	SessionID  string                  `json:"sessionId"`
	SessionURL string                  `json:"sessionUrl"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(patientID, doctorID uuid.UUID) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		PatientID:    patientID,
		DoctorID:     doctorID,
		Date:         domain.NormalizeDate(date),
		TimeSlot:     r.TimeSlot,
		HealthIssues: r.HealthIssues,
		Reports:      r.GroupedReports,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CheckoutResponse {
	return &CheckoutResponse{
		Booking:    models.FromDomainBooking(resp.Booking),
		SessionID:  resp.SessionID,
		SessionURL: resp.SessionURL,
	}
}
