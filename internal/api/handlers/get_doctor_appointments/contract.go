package get_doctor_appointments

import (
	"context"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	bookingModels "github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

type DoctorService interface {
	Appointments(ctx context.Context, identity domain.Identity, req *models.AppointmentsFilterRequest) (*bookingModels.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
