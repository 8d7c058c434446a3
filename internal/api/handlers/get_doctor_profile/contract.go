package get_doctor_profile

import (
	"context"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

type DoctorService interface {
	GetProfile(ctx context.Context, identity domain.Identity) (*models.ProfileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
