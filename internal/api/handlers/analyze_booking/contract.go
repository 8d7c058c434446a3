package analyze_booking

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

type BookingService interface {
	Analyze(ctx context.Context, identity domain.Identity, bookingID uuid.UUID) (json.RawMessage, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
