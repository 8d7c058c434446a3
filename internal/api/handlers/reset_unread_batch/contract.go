package reset_unread_batch

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/service/bookings/models"
)

type BookingService interface {
	ResetUnreadBatch(ctx context.Context, identity domain.Identity, ids []uuid.UUID) (*models.ResetUnreadResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
