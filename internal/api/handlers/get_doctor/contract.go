package get_doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

type DoctorService interface {
	GetByID(ctx context.Context, doctorID uuid.UUID) (*models.DoctorResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
