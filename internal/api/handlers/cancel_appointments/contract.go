package cancel_appointments

import (
	"context"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

type DoctorService interface {
	CancelAppointments(ctx context.Context, identity domain.Identity, req *models.CancelAppointmentsRequest) (*models.CancelAppointmentsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
