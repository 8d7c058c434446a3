package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/payments"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	HasActiveBooking(ctx context.Context, doctorID uuid.UUID, date time.Time, slot domain.TimeSlot) (bool, error)
	Update(ctx context.Context, booking *domain.Booking) error
	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error
}

// DoctorRepository интерфейс репозитория врачей
type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Doctor, error)
}

// PatientRepository интерфейс получения данных пациента
type PatientRepository interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*domain.Patient, error)
}

// PaymentClient интерфейс клиента платежного провайдера
type PaymentClient interface {
	CreateCheckoutSession(ctx context.Context, in payments.CheckoutRequest) (*payments.CheckoutSession, error)
}

// AvailabilityCache интерфейс кэша проекций доступности
type AvailabilityCache interface {
	Invalidate(ctx context.Context, doctorIDs ...uuid.UUID) error
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	IncBookingCreated()
	IncSlotConflict()
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
