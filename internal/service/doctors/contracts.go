package doctors

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// DoctorRepository интерфейс репозитория врачей
type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Doctor, error)
	ReplaceTimeSlots(ctx context.Context, doctorID uuid.UUID, slots []domain.TimeSlot) error
	Search(ctx context.Context, text string) ([]*domain.Doctor, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListByDoctor(ctx context.Context, filter domain.DoctorAppointmentsFilter) ([]*domain.Booking, error)
	CancelForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end *string) ([]uuid.UUID, error)
}

// AvailabilityCache интерфейс кэша проекций доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, doctorIDs ...uuid.UUID) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
