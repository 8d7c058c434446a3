package get_availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListOccupiedSlots возвращает слоты активных записей врача, начиная с даты from
	ListOccupiedSlots(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]domain.BookedSlot, error)
}

// DoctorRepository интерфейс репозитория врачей
type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Doctor, error)
}

// Cache интерфейс кэша проекций доступности
// Set пишет проекцию под поколением, прочитанным через Generation до чтения записей
type Cache interface {
	Generation(ctx context.Context, doctorID uuid.UUID) (int64, error)
	Get(ctx context.Context, doctorID uuid.UUID, today time.Time) (*domain.Projection, bool, error)
	Set(ctx context.Context, projection *domain.Projection, generation int64) error
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	ObserveCacheLookup(hit bool)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
