package doctor_availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AvailabilityUseCase interface {
	AvailableDates(ctx context.Context, doctorID uuid.UUID) ([]time.Time, error)
	BlockedDates(ctx context.Context, doctorID uuid.UUID) ([]time.Time, error)
	BlockedDatesWithSlots(ctx context.Context, doctorID uuid.UUID) (map[string]interface{}, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
