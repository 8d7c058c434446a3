package add_doctor_response

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
)

type BookingService interface {
	AddDoctorResponse(ctx context.Context, identity domain.Identity, bookingID uuid.UUID, text string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
