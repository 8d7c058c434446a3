package reset_unread

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

type BookingService interface {
	ResetUnread(ctx context.Context, identity domain.Identity, bookingID uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
