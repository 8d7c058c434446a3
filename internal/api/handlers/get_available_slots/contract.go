package get_available_slots

import (
	"context"
	"time"

	"github.com/google/uuid"

	getAvailability "github.com/m04kA/SMC-DoctorBooking/internal/usecase/get_availability"
)

type AvailabilityUseCase interface {
	FreeSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*getAvailability.FreeSlotsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
