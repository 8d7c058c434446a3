package bookings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Booking, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	AppendHealthIssue(ctx context.Context, bookingID uuid.UUID, entry domain.TextEntry) error
	AppendDoctorResponse(ctx context.Context, bookingID uuid.UUID, entry domain.TextEntry) error
	AppendReportEvents(ctx context.Context, bookingID uuid.UUID, events []domain.ReportEvent) error
	ResetUnread(ctx context.Context, ids []uuid.UUID, role domain.Role, now time.Time) (int64, error)
}

// Analyzer интерфейс AI-анализа записи
type Analyzer interface {
	Trigger(ctx context.Context, bookingID uuid.UUID)
	AnalyzeNow(ctx context.Context, bookingID uuid.UUID) (json.RawMessage, error)
}

// AvailabilityCache интерфейс кэша проекций доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, doctorIDs ...uuid.UUID) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
