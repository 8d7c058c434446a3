package search_doctors

import (
	"context"

	"github.com/m04kA/SMC-DoctorBooking/internal/service/doctors/models"
)

type DoctorService interface {
	Search(ctx context.Context, query string) (*models.DoctorListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
